// Package engine implements the order lifecycle state machine. Every
// mutating operation is all-or-nothing: validation runs against a copy of
// the record and the store is only written once the whole transition has
// been priced, fee-split and verified. Bridge instructions are emitted after
// the local commit, never awaited inline.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"fusionswap/internal/auth"
	"fusionswap/internal/bridge"
	"fusionswap/internal/domain"
	"fusionswap/internal/infra"
	"fusionswap/internal/store"
	"fusionswap/pkg/units"
)

// Persister is the write-through audit sink. A persistence failure after the
// in-memory commit is logged, not rolled back: the store is authoritative.
type Persister interface {
	SaveOrder(domain.Order) error
}

// Config carries the engine's operational settings.
type Config struct {
	// MinSafetyDeposit gates privileged fills and premium cancellations.
	MinSafetyDeposit units.Amount
	// DefaultCancelAuctionSecs applies when an order omits its own window.
	DefaultCancelAuctionSecs units.Duration

	SrcChain    string
	DstChain    string
	SrcDecimals int32
	DstDecimals int32
}

// Engine is the settlement engine. One instance owns one order store.
type Engine struct {
	cfg       Config
	store     *store.OrderStore
	resolvers *auth.ResolverRegistry
	adapter   bridge.Adapter
	persist   Persister
	metrics   *infra.Metrics
	guard     *inflightGuard
	now       func() units.Timestamp
	log       *slog.Logger
}

// New wires an engine. persist and metrics may be nil.
func New(cfg Config, st *store.OrderStore, resolvers *auth.ResolverRegistry, adapter bridge.Adapter, persist Persister, metrics *infra.Metrics) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     st,
		resolvers: resolvers,
		adapter:   adapter,
		persist:   persist,
		metrics:   metrics,
		guard:     newInflightGuard(),
		now:       func() units.Timestamp { return units.Timestamp(time.Now().Unix()) },
		log:       slog.Default().With("module", "engine"),
	}
}

// SetClock replaces the time source. Tests drive the engine with a fixed now.
func (e *Engine) SetClock(now func() units.Timestamp) {
	e.now = now
}

// CreateOrder validates the config and inserts the order as Announced.
// The caller is the maker; funding confirmation arrives later via
// ConfirmFunding.
func (e *Engine) CreateOrder(caller string, cfg domain.OrderConfig) error {
	defer e.observe(time.Now())

	if cfg.Maker == "" {
		cfg.Maker = caller
	}
	if cfg.Maker != caller {
		return e.fail(fmt.Errorf("%w: caller %s is not the maker", domain.ErrUnauthorizedCaller, caller))
	}

	if err := e.guard.acquire(cfg.ID); err != nil {
		return e.fail(err)
	}
	defer e.guard.release(cfg.ID)

	now := e.now()
	if err := cfg.Validate(now); err != nil {
		return e.fail(err)
	}
	if cfg.CancelAuctionSecs == 0 {
		cfg.CancelAuctionSecs = e.cfg.DefaultCancelAuctionSecs
	}

	o := cfg.Build(now)
	if err := e.store.Insert(o); err != nil {
		return e.fail(err)
	}
	e.commit(o)

	if e.metrics != nil {
		e.metrics.RecordOrderCreated()
	}
	e.log.Info("order created",
		slog.Uint64("id", uint64(o.ID)),
		slog.String("maker", o.Maker),
		slog.Uint64("src_amount", uint64(o.SrcAmount)))
	return nil
}

// ConfirmFunding applies the bridge's escrow signal: funded moves the order
// Announced -> Active; a funding failure moves it to Failed with the bridge
// reason. The transition itself is data, not an error.
func (e *Engine) ConfirmFunding(id units.OrderID, funded bool, reason string) error {
	defer e.observe(time.Now())

	if err := e.guard.acquire(id); err != nil {
		return e.fail(err)
	}
	defer e.guard.release(id)

	o, ok := e.store.Get(id)
	if !ok {
		return e.fail(fmt.Errorf("%w: id=%d", domain.ErrOrderNotFound, id))
	}
	if o.Status != domain.StatusAnnounced {
		return e.fail(fmt.Errorf("%w: funding signal for %s order %d", domain.ErrInvalidOrderState, o.Status, id))
	}

	if funded {
		o.Status = domain.StatusActive
	} else {
		o.Status = domain.StatusFailed
		o.StatusReason = reason
		if e.metrics != nil {
			e.metrics.RecordTransferFailure()
		}
		e.log.Warn("escrow funding failed", slog.Uint64("id", uint64(id)),
			slog.Any("error", domain.NewTransferFailure(reason)))
	}
	if err := e.store.Update(o); err != nil {
		return e.fail(err)
	}
	e.commit(o)

	e.log.Info("funding signal applied",
		slog.Uint64("id", uint64(id)),
		slog.Bool("funded", funded),
		slog.String("reason", reason))
	return nil
}

// FillOrder executes a (possibly partial) fill at the current auction price.
// Only authorized resolvers with a sufficient safety deposit may fill. The
// first fill consumes the hashlock secret and records the caller as taker.
func (e *Engine) FillOrder(caller string, id units.OrderID, amount units.Amount, secret []byte) error {
	defer e.observe(time.Now())

	// Authorization precedes any store access: a rejected caller can never
	// cause a partial mutation.
	if !e.resolvers.IsAuthorized(caller) {
		return e.fail(fmt.Errorf("%w: %s is not an authorized resolver", domain.ErrUnauthorizedCaller, caller))
	}
	if e.resolvers.Deposit(caller) < e.cfg.MinSafetyDeposit {
		return e.fail(fmt.Errorf("%w: resolver %s holds %d, need %d",
			domain.ErrInsufficientSafetyDeposit, caller, e.resolvers.Deposit(caller), e.cfg.MinSafetyDeposit))
	}

	if err := e.guard.acquire(id); err != nil {
		return e.fail(err)
	}
	defer e.guard.release(id)

	o, ok := e.store.Get(id)
	if !ok {
		return e.fail(fmt.Errorf("%w: id=%d", domain.ErrOrderNotFound, id))
	}
	if o.Status != domain.StatusActive {
		return e.fail(fmt.Errorf("%w: cannot fill %s order %d", domain.ErrInvalidOrderState, o.Status, id))
	}

	now := e.now()
	if now > o.ExpirationTime {
		return e.fail(fmt.Errorf("%w: id=%d expired at %d", domain.ErrOrderExpired, id, o.ExpirationTime))
	}
	if amount == 0 || amount > o.Remaining() {
		return e.fail(fmt.Errorf("%w: fill of %d against remaining %d", domain.ErrInvalidAmount, amount, o.Remaining()))
	}
	if o.Taker != "" && caller != o.Taker && now < o.Timelock.ExclusiveUntil() {
		return e.fail(fmt.Errorf("%w: exclusive withdraw window belongs to %s", domain.ErrUnauthorizedCaller, o.Taker))
	}

	// First fill reveals the secret; later partial fills ride the reveal.
	lock := o.Lock
	if !lock.Revealed {
		var err error
		lock, err = domain.VerifyAndReveal(lock, secret, o.Timelock, now)
		if err != nil {
			return e.fail(err)
		}
	}

	price := o.Auction.FillPrice(now, o.MinDstAmount)
	dstOwed := domain.ProRate(price, amount, o.SrcAmount)
	fees, err := domain.ComputeFees(dstOwed, o.Fee)
	if err != nil {
		return e.fail(err)
	}

	o.Lock = lock
	o.FilledAmount += amount
	o.Auction.CurrentPrice = price
	if o.Taker == "" {
		o.Taker = caller
	}
	partial := o.FilledAmount < o.SrcAmount
	if !partial {
		o.Status = domain.StatusCompleted
	}

	if err := e.store.Update(o); err != nil {
		return e.fail(err)
	}
	e.commit(o)

	if e.metrics != nil {
		e.metrics.RecordOrderFilled(partial)
	}
	e.emit(bridge.NewInstruction(bridge.KindTransfer, o.ID, e.cfg.DstChain, o.DstAsset, fees.NetAmount, e.cfg.DstDecimals, o.Maker))
	e.emit(bridge.NewInstruction(bridge.KindRelease, o.ID, e.cfg.SrcChain, o.SrcAsset, amount, e.cfg.SrcDecimals, caller))

	e.log.Info("order filled",
		slog.Uint64("id", uint64(id)),
		slog.String("resolver", caller),
		slog.Uint64("amount", uint64(amount)),
		slog.Uint64("price", uint64(price)),
		slog.Uint64("net_dst", uint64(fees.NetAmount)),
		slog.Bool("partial", partial))
	return nil
}

// CancelOrder cancels a pre-terminal order. The maker may always cancel
// their own order for a plain refund; an authorized resolver cancelling an
// expired order earns the cancellation premium out of the refund. Expiration
// never blocks cancellation.
func (e *Engine) CancelOrder(caller string, id units.OrderID) error {
	defer e.observe(time.Now())

	if err := e.guard.acquire(id); err != nil {
		return e.fail(err)
	}
	defer e.guard.release(id)

	o, ok := e.store.Get(id)
	if !ok {
		return e.fail(fmt.Errorf("%w: id=%d", domain.ErrOrderNotFound, id))
	}
	if !o.IsOpen() {
		return e.fail(fmt.Errorf("%w: cannot cancel %s order %d", domain.ErrInvalidOrderState, o.Status, id))
	}

	isMaker := caller == o.Maker
	if !isMaker && !e.resolvers.IsAuthorized(caller) {
		return e.fail(fmt.Errorf("%w: %s may not cancel order %d", domain.ErrUnauthorizedCaller, caller, id))
	}

	now := e.now()
	var premium units.Amount
	if !isMaker {
		premium = domain.CancelPremium(o.ExpirationTime, o.CancelAuctionSecs, o.Fee.MaxCancelPremium, now)
		if premium > 0 && e.resolvers.Deposit(caller) < e.cfg.MinSafetyDeposit {
			return e.fail(fmt.Errorf("%w: resolver %s holds %d, need %d",
				domain.ErrInsufficientSafetyDeposit, caller, e.resolvers.Deposit(caller), e.cfg.MinSafetyDeposit))
		}
	}

	locked := o.Remaining()
	if premium > locked {
		premium = locked
	}
	refund := locked - premium

	o.Status = domain.StatusCancelled
	if err := e.store.Update(o); err != nil {
		return e.fail(err)
	}
	e.commit(o)

	if e.metrics != nil {
		e.metrics.RecordOrderCancelled()
	}
	if refund > 0 {
		e.emit(bridge.NewInstruction(bridge.KindRefund, o.ID, e.cfg.SrcChain, o.SrcAsset, refund, e.cfg.SrcDecimals, o.Maker))
	}
	if premium > 0 {
		e.emit(bridge.NewInstruction(bridge.KindPremium, o.ID, e.cfg.SrcChain, o.SrcAsset, premium, e.cfg.SrcDecimals, caller))
	}

	e.log.Info("order cancelled",
		slog.Uint64("id", uint64(id)),
		slog.String("caller", caller),
		slog.Uint64("refund", uint64(refund)),
		slog.Uint64("premium", uint64(premium)))
	return nil
}

// ExpireSweep fails every open order whose expiration has passed and refunds
// its remaining escrow. Orders with an operation in flight are skipped and
// picked up on the next invocation. Re-running the sweep is a no-op for
// already-terminal orders. Returns the number of orders expired.
func (e *Engine) ExpireSweep(now units.Timestamp) int {
	defer e.observe(time.Now())

	expired := 0
	for _, id := range e.store.IDs() {
		if !e.guard.tryAcquire(id) {
			continue
		}
		if e.sweepOne(id, now) {
			expired++
		}
		e.guard.release(id)
	}
	if expired > 0 {
		e.log.Info("expiration sweep", slog.Uint64("now", uint64(now)), slog.Int("expired", expired))
	}
	return expired
}

func (e *Engine) sweepOne(id units.OrderID, now units.Timestamp) bool {
	o, ok := e.store.Get(id)
	if !ok || !o.IsOpen() || o.ExpirationTime >= now {
		return false
	}

	remaining := o.Remaining()
	o.Status = domain.StatusFailed
	o.StatusReason = domain.ReasonExpired
	if err := e.store.Update(o); err != nil {
		e.log.Error("sweep update failed", slog.Uint64("id", uint64(id)), slog.Any("error", err))
		return false
	}
	e.commit(o)

	if e.metrics != nil {
		e.metrics.RecordOrderExpired()
	}
	if remaining > 0 {
		e.emit(bridge.NewInstruction(bridge.KindRefund, o.ID, e.cfg.SrcChain, o.SrcAsset, remaining, e.cfg.SrcDecimals, o.Maker))
	}
	return true
}

// GetOrder returns a copy of the order, if present.
func (e *Engine) GetOrder(id units.OrderID) (domain.Order, bool) {
	return e.store.Get(id)
}

// GetAllOrders returns copies of every order.
func (e *Engine) GetAllOrders() []domain.Order {
	return e.store.All()
}

// GetOrdersByMaker returns copies of the maker's orders.
func (e *Engine) GetOrdersByMaker(maker string) []domain.Order {
	return e.store.ByMaker(maker)
}

// SetAuthorizedResolver administers the resolver allow-list. Owner only.
func (e *Engine) SetAuthorizedResolver(caller, principal string, ok bool) error {
	if err := e.resolvers.SetAuthorized(caller, principal, ok); err != nil {
		return e.fail(err)
	}
	e.log.Info("resolver authorization changed",
		slog.String("principal", principal), slog.Bool("authorized", ok))
	return nil
}

// commit write-throughs the record to the audit store.
func (e *Engine) commit(o domain.Order) {
	if e.persist == nil {
		return
	}
	if err := e.persist.SaveOrder(o); err != nil {
		e.log.Error("order persistence failed", slog.Uint64("id", uint64(o.ID)), slog.Any("error", err))
	}
}

// emit hands an instruction to the bridge adapter. Fire-and-forget: the
// adapter never blocks the command path.
func (e *Engine) emit(in bridge.Instruction) {
	if e.adapter == nil {
		return
	}
	e.adapter.Enqueue(in)
}

func (e *Engine) fail(err error) error {
	if e.metrics != nil {
		e.metrics.RecordError()
	}
	return err
}

func (e *Engine) observe(start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordCommand(time.Since(start).Nanoseconds())
	}
}
