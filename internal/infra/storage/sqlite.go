// Package storage persists order records to SQLite through gorm. The
// in-memory store stays authoritative at runtime; the database is the audit
// trail and the recovery source after a restart. The maker index is never
// persisted — it is a query over the primary table.
package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fusionswap/internal/domain"
	"fusionswap/pkg/units"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage wraps the SQLite connection.
type Storage struct {
	db *gorm.DB
}

// orderRecord is the flattened row shape for a domain.Order.
type orderRecord struct {
	ID    uint64 `gorm:"primaryKey"`
	Maker string `gorm:"index"`
	Taker string

	SrcAsset           string
	DstAsset           string
	SrcAmount          uint64
	MinDstAmount       uint64
	EstimatedDstAmount uint64
	FilledAmount       uint64

	AuctionStartPrice   uint64
	AuctionEndPrice     uint64
	AuctionStartTime    uint64
	AuctionEndTime      uint64
	AuctionCurrentPrice uint64

	ProtocolFeeBps   uint32
	IntegratorFeeBps uint32
	SurplusBps       uint32
	MaxCancelPremium uint64

	SecretHash string // hex
	Revealed   bool
	RevealTime *uint64

	TimelockCreatedAt         uint64
	FinalityLockDuration      uint64
	ExclusiveWithdrawDuration uint64
	CancellationTimeout       uint64

	Status       string
	StatusReason string

	CreatedAt         uint64
	ExpirationTime    uint64
	CancelAuctionSecs uint64
}

func (orderRecord) TableName() string { return "orders" }

// NewStorage opens (or creates) the database. An empty path resolves to the
// per-user data directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&orderRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

func defaultDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "FusionSwap", "data", "fusionswap.db"), nil
}

// SaveOrder upserts the order row.
func (s *Storage) SaveOrder(o domain.Order) error {
	rec := toRecord(o)
	return s.db.Save(&rec).Error
}

// GetOrder retrieves one order by id. Not found is not an error.
func (s *Storage) GetOrder(id units.OrderID) (*domain.Order, error) {
	var rec orderRecord
	err := s.db.First(&rec, "id = ?", uint64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// LoadAll returns every persisted order. Used at bootstrap to rebuild the
// in-memory store and its maker index.
func (s *Storage) LoadAll() ([]domain.Order, error) {
	var recs []orderRecord
	if err := s.db.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// OrdersByMaker queries the primary table by maker.
func (s *Storage) OrdersByMaker(maker string) ([]domain.Order, error) {
	var recs []orderRecord
	if err := s.db.Where("maker = ?", maker).Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func toRecord(o domain.Order) orderRecord {
	rec := orderRecord{
		ID:    uint64(o.ID),
		Maker: o.Maker,
		Taker: o.Taker,

		SrcAsset:           o.SrcAsset,
		DstAsset:           o.DstAsset,
		SrcAmount:          uint64(o.SrcAmount),
		MinDstAmount:       uint64(o.MinDstAmount),
		EstimatedDstAmount: uint64(o.EstimatedDstAmount),
		FilledAmount:       uint64(o.FilledAmount),

		AuctionStartPrice:   uint64(o.Auction.StartPrice),
		AuctionEndPrice:     uint64(o.Auction.EndPrice),
		AuctionStartTime:    uint64(o.Auction.StartTime),
		AuctionEndTime:      uint64(o.Auction.EndTime),
		AuctionCurrentPrice: uint64(o.Auction.CurrentPrice),

		ProtocolFeeBps:   uint32(o.Fee.ProtocolFeeBps),
		IntegratorFeeBps: uint32(o.Fee.IntegratorFeeBps),
		SurplusBps:       uint32(o.Fee.SurplusBps),
		MaxCancelPremium: uint64(o.Fee.MaxCancelPremium),

		SecretHash: hex.EncodeToString(o.Lock.SecretHash[:]),
		Revealed:   o.Lock.Revealed,

		TimelockCreatedAt:         uint64(o.Timelock.CreatedAt),
		FinalityLockDuration:      uint64(o.Timelock.FinalityLockDuration),
		ExclusiveWithdrawDuration: uint64(o.Timelock.ExclusiveWithdrawDuration),
		CancellationTimeout:       uint64(o.Timelock.CancellationTimeout),

		Status:       string(o.Status),
		StatusReason: o.StatusReason,

		CreatedAt:         uint64(o.CreatedAt),
		ExpirationTime:    uint64(o.ExpirationTime),
		CancelAuctionSecs: uint64(o.CancelAuctionSecs),
	}
	if o.Lock.RevealTime != nil {
		t := uint64(*o.Lock.RevealTime)
		rec.RevealTime = &t
	}
	return rec
}

func fromRecord(rec orderRecord) (domain.Order, error) {
	o := domain.Order{
		ID:    units.OrderID(rec.ID),
		Maker: rec.Maker,
		Taker: rec.Taker,

		SrcAsset:           rec.SrcAsset,
		DstAsset:           rec.DstAsset,
		SrcAmount:          units.Amount(rec.SrcAmount),
		MinDstAmount:       units.Amount(rec.MinDstAmount),
		EstimatedDstAmount: units.Amount(rec.EstimatedDstAmount),
		FilledAmount:       units.Amount(rec.FilledAmount),

		Auction: domain.AuctionData{
			StartPrice:   units.Amount(rec.AuctionStartPrice),
			EndPrice:     units.Amount(rec.AuctionEndPrice),
			StartTime:    units.Timestamp(rec.AuctionStartTime),
			EndTime:      units.Timestamp(rec.AuctionEndTime),
			CurrentPrice: units.Amount(rec.AuctionCurrentPrice),
		},
		Fee: domain.FeeConfig{
			ProtocolFeeBps:   units.Bps(rec.ProtocolFeeBps),
			IntegratorFeeBps: units.Bps(rec.IntegratorFeeBps),
			SurplusBps:       units.Bps(rec.SurplusBps),
			MaxCancelPremium: units.Amount(rec.MaxCancelPremium),
		},
		Lock: domain.HashLock{Revealed: rec.Revealed},
		Timelock: domain.TimeLock{
			CreatedAt:                 units.Timestamp(rec.TimelockCreatedAt),
			FinalityLockDuration:      units.Duration(rec.FinalityLockDuration),
			ExclusiveWithdrawDuration: units.Duration(rec.ExclusiveWithdrawDuration),
			CancellationTimeout:       units.Duration(rec.CancellationTimeout),
		},

		Status:       domain.OrderStatus(rec.Status),
		StatusReason: rec.StatusReason,

		CreatedAt:         units.Timestamp(rec.CreatedAt),
		ExpirationTime:    units.Timestamp(rec.ExpirationTime),
		CancelAuctionSecs: units.Duration(rec.CancelAuctionSecs),
	}

	digest, err := hex.DecodeString(rec.SecretHash)
	if err != nil || len(digest) != domain.HashLen {
		return domain.Order{}, fmt.Errorf("corrupt secret hash for order %d", rec.ID)
	}
	copy(o.Lock.SecretHash[:], digest)

	if rec.RevealTime != nil {
		t := units.Timestamp(*rec.RevealTime)
		o.Lock.RevealTime = &t
	}
	return o, nil
}
