// Package repository declares the storage contracts the services depend on.
//
// Every method returns (value, error) and the error is always an
// *apperror.AppError: ErrNotFound, ErrConflict, ErrValidation (a dangling
// foreign key) or ErrStorage. Implementations never panic and never return a
// raw driver error.
package repository

import (
	"context"

	"github.com/sakif/inventory-api/internal/model"
)

type UserRepository interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create fails with ErrConflict when the username or email is taken.
	Create(ctx context.Context, u model.NewUser) (*model.User, error)

	// Update applies only the non-nil fields of patch. A username or email
	// owned by another user rejects the whole update.
	Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error)

	// Delete returns the removed user.
	Delete(ctx context.Context, id int64) (*model.User, error)
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (*model.Category, error)
}

type SupplierRepository interface {
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*model.Supplier, error)
	CreateSupplier(ctx context.Context, s model.Supplier) (*model.Supplier, error)
}

type DiscountRepository interface {
	ListDiscounts(ctx context.Context) ([]model.Discount, error)
	GetDiscount(ctx context.Context, id int64) (*model.Discount, error)
	CreateDiscount(ctx context.Context, d model.Discount) (*model.Discount, error)
}

type TaxRepository interface {
	ListTaxes(ctx context.Context) ([]model.Tax, error)
	GetTax(ctx context.Context, id int64) (*model.Tax, error)
	CreateTax(ctx context.Context, t model.Tax) (*model.Tax, error)
}

// ProductRepository reports a reference to a missing category, discount,
// tax or supplier as ErrValidation.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (*model.Product, error)
}

// Pinger is satisfied by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
