package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dinehall/dinehall/internal/cache"
	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/entity"
	repo "github.com/dinehall/dinehall/internal/repository/product"
	"github.com/dinehall/dinehall/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/dinehall/dinehall/service/product")

// Service manages the sellable catalog. Reads are cache-aside; the order
// ledger consults Get at order time to snapshot the current price.
type Service struct {
	repo     *repo.Repository
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Get retrieves a product by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.Get", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if product, err := s.getFromCache(ctx, id); err == nil {
		return product, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("products cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, product); err != nil {
		if s.logger != nil {
			s.logger.Warn("products cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return product, nil
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "ProductService.List")
	defer span.End()

	products, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	return products, nil
}

// Create adds a catalog item.
func (s *Service) Create(ctx context.Context, name string, price decimal.Decimal) (*entity.Product, error) {
	if name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	if price.IsNegative() {
		return nil, errorbank.BadRequest("price must not be negative")
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.Create", trace.WithAttributes(attribute.String("product.name", name)))
	defer span.End()

	now := time.Now().UTC()
	product := &entity.Product{
		Name:      name,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}
	return product, nil
}

// Update rewrites a product's name and price. Existing orders keep the price
// they captured at creation.
func (s *Service) Update(ctx context.Context, id int64, name string, price decimal.Decimal) error {
	if name == "" {
		return errorbank.BadRequest("name is required")
	}
	if price.IsNegative() {
		return errorbank.BadRequest("price must not be negative")
	}
	ctx, span := serviceTracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := s.repo.Update(ctx, id, name, price); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil && s.logger != nil {
			s.logger.Warn("products cache invalidation failed", zap.Int64("id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("products:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var product entity.Product
	if err := json.Unmarshal(bytes, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) storeInCache(ctx context.Context, product *entity.Product) error {
	if s.cache == nil || product == nil {
		return nil
	}
	bytes, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(product.ID), bytes, s.cacheTTL)
}
