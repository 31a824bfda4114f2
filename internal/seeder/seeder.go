package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Tables seeds the physical table catalog if it is missing.
func (s *Seeder) Tables(ctx context.Context) error {
	now := time.Now().UTC()
	for number := 1; number <= 10; number++ {
		table := entity.Table{Number: number, CreatedAt: now}
		_, err := s.db.NewInsert().Model(&table).
			On("CONFLICT (number) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded tables", zap.Int("count", 10))
	}
	return nil
}

// Products seeds a starter menu if it is missing.
func (s *Seeder) Products(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Product{
		{Name: "Espresso", Price: decimal.RequireFromString("3.50"), CreatedAt: now, UpdatedAt: now},
		{Name: "Margherita", Price: decimal.RequireFromString("12.00"), CreatedAt: now, UpdatedAt: now},
		{Name: "House Salad", Price: decimal.RequireFromString("8.75"), CreatedAt: now, UpdatedAt: now},
		{Name: "Tiramisu", Price: decimal.RequireFromString("6.25"), CreatedAt: now, UpdatedAt: now},
	}

	for _, sample := range samples {
		product := sample
		_, err := s.db.NewInsert().Model(&product).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded products", zap.Int("count", len(samples)))
	}
	return nil
}
