package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/repository"
)

// ProductService manages products. References to the catalog are checked
// by id lookup before the write, so a client gets told which field is wrong;
// the schema's foreign keys still back this up.
type ProductService struct {
	products repository.ProductRepository
	catalog  CatalogRepository
}

func NewProductService(products repository.ProductRepository, catalog CatalogRepository) *ProductService {
	return &ProductService{products: products, catalog: catalog}
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.products.ListProducts(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// Create validates p and its references and stores it.
func (s *ProductService) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	name, err := requireName("nombre_producto", p.Name)
	if err != nil {
		return nil, err
	}
	p.Name = name

	if err := validatePrice(p.Price); err != nil {
		return nil, err
	}
	if err := validateStock(p.Stock); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &p.CategoryID, p.DiscountID, p.TaxID, p.SupplierID); err != nil {
		return nil, err
	}

	return s.products.CreateProduct(ctx, p)
}

// Update validates the present fields of upd and applies them.
func (s *ProductService) Update(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error) {
	if upd.Name != nil {
		name, err := requireName("nombre_producto", *upd.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if upd.Price != nil {
		if err := validatePrice(*upd.Price); err != nil {
			return nil, err
		}
	}
	if upd.Stock != nil {
		if err := validateStock(*upd.Stock); err != nil {
			return nil, err
		}
	}
	err := s.checkRefs(ctx, upd.CategoryID,
		skipCleared(upd.DiscountID), skipCleared(upd.TaxID), skipCleared(upd.SupplierID))
	if err != nil {
		return nil, err
	}

	return s.products.UpdateProduct(ctx, id, upd)
}

func (s *ProductService) Delete(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.DeleteProduct(ctx, id)
}

// checkRefs looks up every non-nil id and reports the first one that does
// not exist as a validation error on its request field.
func (s *ProductService) checkRefs(ctx context.Context, category, discount, tax, supplier *int64) error {
	refs := []struct {
		field  string
		id     *int64
		lookup func(context.Context, int64) error
	}{
		{"id_categoria", category, func(ctx context.Context, id int64) error {
			_, err := s.catalog.GetCategory(ctx, id)
			return err
		}},
		{"id_descuento", discount, func(ctx context.Context, id int64) error {
			_, err := s.catalog.GetDiscount(ctx, id)
			return err
		}},
		{"id_iva", tax, func(ctx context.Context, id int64) error {
			_, err := s.catalog.GetTax(ctx, id)
			return err
		}},
		{"id_proveedor", supplier, func(ctx context.Context, id int64) error {
			_, err := s.catalog.GetSupplier(ctx, id)
			return err
		}},
	}

	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		err := ref.lookup(ctx, *ref.id)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed(ref.field,
				fmt.Sprintf("%s %s does not exist", ref.field, strconv.FormatInt(*ref.id, 10)))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// skipCleared hides a 0 from checkRefs; on an optional reference it means
// "clear", not a lookup.
func skipCleared(id *int64) *int64 {
	if id != nil && *id == 0 {
		return nil
	}
	return id
}

func validatePrice(p float64) error {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return apperror.ValidationFailed("precio", "precio must be a non-negative number")
	}
	return nil
}

func validateStock(n int64) error {
	if n < 0 {
		return apperror.ValidationFailed("stock", "stock must not be negative")
	}
	return nil
}
