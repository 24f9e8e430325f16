package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

// ProductIndex is the full-text index kept next to the products table.
type ProductIndex interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events mykafka.Publisher
}

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Category    string          `json:"category"    validate:"required,max=50"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"       validate:"max=300"`
	Description string          `json:"description"`
	Culture     string          `json:"culture"     validate:"max=50"`
	Story       string          `json:"story"`
}

func (s *CatalogService) ListProducts(ctx context.Context, category string, page, size int) (util.Page[models.Product], error) {
	from, limit := util.Calculate(page, size)
	items, total, err := s.Repo.GetProducts(ctx, category, from, limit)
	if err != nil {
		return util.Page[models.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return util.NewPage(items, total, page, limit), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return prod, nil
}

// SearchProducts queries the index when one is configured and falls back to
// a LIKE match in the database when it is not or when the index fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (util.Page[models.Product], error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return util.Page[models.Product]{}, fmt.Errorf("%w: query is required", ErrValidation)
	}
	from, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, from, limit)
		if err == nil {
			return util.NewPage(items, total, page, limit), nil
		}
		l.Warn("index_search_failed", "query", query, "error", err)
	}

	items, total, err := s.Repo.SearchProducts(ctx, query, from, limit)
	if err != nil {
		return util.Page[models.Product]{}, fmt.Errorf("search products: %w", err)
	}
	return util.NewPage(items, total, page, limit), nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrValidation)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	prod := &models.Product{
		Name:        req.Name,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Culture:     req.Culture,
		Story:       req.Story,
		IsActive:    true,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.reindex(ctx, prod)
	s.publishProduct(ctx, "product_created", prod)
	logging.FromContext(ctx).With("svc", "catalog.create").Info("product_created", "product_id", prod.ID)
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, patch repo.ProductPatch) (*models.Product, error) {
	if patch.Price != nil && !patch.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	prod, err := s.Repo.PatchProduct(ctx, id, patch)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("patch product: %w", err)
	}

	s.reindex(ctx, prod)
	s.publishProduct(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.Repo.DeleteProduct(ctx, id)
	if isNotFound(err) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("index_delete_failed", "product_id", id, "error", err)
		}
	}
	s.publishProduct(ctx, "product_deleted", &models.Product{ID: id})
	return nil
}

// reindex is best effort; the database stays the source of truth.
func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publishProduct(ctx context.Context, typ string, p *models.Product) {
	publish(ctx, s.Events, mykafka.TopicProductEvents, fmt.Sprint(p.ID), mykafka.ProductEvent{
		Type:       typ,
		ProductID:  p.ID,
		Name:       p.Name,
		OccurredAt: time.Now().UTC(),
	})
}
