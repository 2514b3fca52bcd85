package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"fusionswap/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	maxRetries   = 10
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Relay ships instructions to the ledger-access relay over a websocket.
// Instructions stay in the pending set until the relay acknowledges their id;
// on reconnect the whole pending set is redelivered.
type Relay struct {
	url     string
	metrics *infra.Metrics

	outbox chan Instruction

	mu      sync.Mutex
	pending map[string]Instruction

	conn      *websocket.Conn
	writeMu   sync.Mutex
	connMu    sync.RWMutex
	connected bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelay creates a relay client for url with a buffered outbox.
func NewRelay(url string, outboxSize int, m *infra.Metrics) *Relay {
	return &Relay{
		url:     url,
		metrics: m,
		outbox:  make(chan Instruction, outboxSize),
		pending: make(map[string]Instruction),
	}
}

// Enqueue hands off an instruction without blocking. A full outbox parks the
// instruction directly in the pending set for the next flush.
func (r *Relay) Enqueue(in Instruction) {
	r.mu.Lock()
	r.pending[in.ID] = in
	r.mu.Unlock()

	select {
	case r.outbox <- in:
	default:
		// Outbox saturated; the pending flush on the writer loop picks it up.
	}
	if r.metrics != nil {
		r.metrics.RecordInstruction()
	}
}

// Connect starts the connection loop.
func (r *Relay) Connect(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.connectionLoop(ctx)
	return nil
}

// Disconnect stops the loops and closes the socket.
func (r *Relay) Disconnect() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.closeConn()
}

// IsConnected reports the socket state.
func (r *Relay) IsConnected() bool {
	r.connMu.RLock()
	defer r.connMu.RUnlock()
	return r.connected
}

func (r *Relay) connectionLoop(ctx context.Context) {
	defer r.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := r.connect(ctx); err != nil {
			slog.Warn("relay connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			r.pumpLoop(ctx)
		}
	}
}

func (r *Relay) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return err
	}

	r.conn = conn
	r.setConnected(true)
	slog.Info("relay connected", slog.String("url", r.url))

	// Redeliver everything unacknowledged from before the reconnect.
	r.mu.Lock()
	backlog := make([]Instruction, 0, len(r.pending))
	for _, in := range r.pending {
		backlog = append(backlog, in)
	}
	r.mu.Unlock()
	for _, in := range backlog {
		if err := r.writeInstruction(in); err != nil {
			r.teardown()
			return err
		}
	}
	return nil
}

// pumpLoop writes outbox instructions and consumes acknowledgements until
// the connection drops.
func (r *Relay) pumpLoop(ctx context.Context) {
	readerDone := make(chan struct{})
	go r.readAcks(readerDone)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			r.teardown()
			<-readerDone
			return
		case <-readerDone:
			r.teardown()
			return
		case <-ping.C:
			r.writeMu.Lock()
			err := r.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			r.writeMu.Unlock()
			if err != nil {
				slog.Warn("relay ping failed", slog.Any("error", err))
				r.teardown()
				<-readerDone
				return
			}
		case in := <-r.outbox:
			if err := r.writeInstruction(in); err != nil {
				slog.Warn("relay write failed", slog.Any("error", err), slog.String("instruction", in.ID))
				r.teardown()
				<-readerDone
				return
			}
		}
	}
}

type relayAck struct {
	Ack string `json:"ack"`
}

func (r *Relay) readAcks(done chan<- struct{}) {
	defer close(done)
	for {
		_ = r.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			return
		}
		var ack relayAck
		if err := json.Unmarshal(msg, &ack); err != nil || ack.Ack == "" {
			continue
		}
		r.mu.Lock()
		delete(r.pending, ack.Ack)
		r.mu.Unlock()
	}
}

func (r *Relay) writeInstruction(in Instruction) error {
	payload, err := in.MarshalWire()
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return r.conn.WriteMessage(websocket.TextMessage, payload)
}

// PendingCount is the number of unacknowledged instructions.
func (r *Relay) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Relay) teardown() {
	r.closeConn()
	r.setConnected(false)
}

func (r *Relay) closeConn() {
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

func (r *Relay) setConnected(v bool) {
	r.connMu.Lock()
	r.connected = v
	r.connMu.Unlock()
	if r.metrics != nil {
		r.metrics.SetRelayConnected(v)
	}
}
