package service

import (
	"context"
	"fmt"
	"strings"

	"ecostore/internal/domain"
	"ecostore/internal/repository"
)

// ProductService defines the interface for catalog business logic
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Search(ctx context.Context, query, category string) ([]*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]*domain.Category, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// Search trims both filters; blank filters are ignored.
func (s *productService) Search(ctx context.Context, query, category string) ([]*domain.Product, error) {
	return s.productRepo.Search(ctx, strings.TrimSpace(query), strings.TrimSpace(category))
}

// Create validates and sanitizes in before storing it. Invalid input is
// reported as a *domain.ValidationError and never reaches the store.
func (s *productService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := domain.ValidateProduct(in).Err(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, domain.SanitizeProduct(in))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update replaces all six fields of product id.
func (s *productService) Update(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := domain.ValidateProduct(in).Err(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, domain.SanitizeProduct(in))
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

func (s *productService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}
