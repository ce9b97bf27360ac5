package service

import (
	"context"
	"strings"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/repository"
)

// CatalogRepository is everything CatalogService reads and writes.
type CatalogRepository interface {
	repository.CategoryRepository
	repository.SupplierRepository
	repository.DiscountRepository
	repository.TaxRepository
}

const MaxNameLength = 255

// CatalogService manages the records products point at: categories,
// suppliers, discounts and taxes.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name, err := requireName("nombre_categoria", name)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateCategory(ctx, model.Category{Name: name})
}

func (s *CatalogService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// CreateSupplier requires a name; phone, email and address are optional.
func (s *CatalogService) CreateSupplier(ctx context.Context, in model.Supplier) (*model.Supplier, error) {
	name, err := requireName("nombre", in.Name)
	if err != nil {
		return nil, err
	}
	in.Name = name
	if in.Phone != nil && len(*in.Phone) > 50 {
		return nil, apperror.ValidationFailed("telefono", "telefono must be 50 characters or fewer")
	}
	return s.repo.CreateSupplier(ctx, in)
}

func (s *CatalogService) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	return s.repo.ListDiscounts(ctx)
}

func (s *CatalogService) CreateDiscount(ctx context.Context, name string, percentage float64) (*model.Discount, error) {
	name, err := requireName("nombre", name)
	if err != nil {
		return nil, err
	}
	if err := validatePercentage(percentage); err != nil {
		return nil, err
	}
	return s.repo.CreateDiscount(ctx, model.Discount{Name: name, Percentage: percentage})
}

func (s *CatalogService) ListTaxes(ctx context.Context) ([]model.Tax, error) {
	return s.repo.ListTaxes(ctx)
}

func (s *CatalogService) CreateTax(ctx context.Context, name string, percentage float64) (*model.Tax, error) {
	name, err := requireName("nombre", name)
	if err != nil {
		return nil, err
	}
	if err := validatePercentage(percentage); err != nil {
		return nil, err
	}
	return s.repo.CreateTax(ctx, model.Tax{Name: name, Percentage: percentage})
}

func requireName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		return "", apperror.ValidationFailed(field, field+" is required")
	case len(name) > MaxNameLength:
		return "", apperror.ValidationFailed(field, field+" must be 255 characters or fewer")
	}
	return name, nil
}

func validatePercentage(p float64) error {
	if p < 0 || p > 100 {
		return apperror.ValidationFailed("porcentaje", "porcentaje must be between 0 and 100")
	}
	return nil
}
