package app

import (
	"context"
	"log/slog"

	"fusionswap/internal/auth"
	"fusionswap/internal/bridge"
	"fusionswap/internal/engine"
	"fusionswap/internal/infra"
	"fusionswap/internal/infra/storage"
	"fusionswap/internal/service"
	"fusionswap/internal/store"
	"fusionswap/pkg/units"
)

// Bootstrap orchestrates the startup sequence.
type Bootstrap struct {
	Config    *infra.Config
	Storage   *storage.Storage
	Store     *store.OrderStore
	Resolvers *auth.ResolverRegistry
	Relay     *bridge.Relay
	Engine    *engine.Engine
	Orders    *service.OrderService
	Metrics   *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, wires logging, recovers persisted orders and
// assembles the engine.
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("bootstrapping fusion settlement engine",
		slog.String("app", cfg.App.Name), slog.String("version", cfg.App.Version))

	st, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = st

	b.Store = store.NewOrderStore()
	persisted, err := st.LoadAll()
	if err != nil {
		return err
	}
	b.Store.Load(persisted)
	slog.Info("order store recovered", slog.Int("orders", len(persisted)))

	b.Metrics = &infra.Metrics{}
	b.Resolvers = auth.NewResolverRegistry(cfg.Engine.Owner)
	b.Relay = bridge.NewRelay(cfg.Bridge.RelayURL, cfg.Bridge.OutboxSize, b.Metrics)

	b.Engine = engine.New(engine.Config{
		MinSafetyDeposit:         units.Amount(cfg.Engine.MinSafetyDeposit),
		DefaultCancelAuctionSecs: units.Duration(cfg.Engine.DefaultCancelAuctionSecs),
		SrcChain:                 cfg.Bridge.SrcChain,
		DstChain:                 cfg.Bridge.DstChain,
		SrcDecimals:              cfg.Bridge.SrcDecimals,
		DstDecimals:              cfg.Bridge.DstDecimals,
	}, b.Store, b.Resolvers, b.Relay, st, b.Metrics)

	b.Orders = service.NewOrderService(b.Store)

	return nil
}

// Start brings up the relay connection.
func (b *Bootstrap) Start(ctx context.Context) error {
	return b.Relay.Connect(ctx)
}

// Shutdown drains the relay.
func (b *Bootstrap) Shutdown() {
	if b.Relay != nil {
		b.Relay.Disconnect()
	}
	slog.Info("engine stopped", slog.Any("metrics", b.Metrics.Snapshot()))
}
