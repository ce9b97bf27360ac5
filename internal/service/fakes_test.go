package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// fakeUserRepo is an in-memory repository.UserRepository with the same
// uniqueness and not-found behaviour as the SQL store.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]model.User
	nextID int64

	// set to a non-nil error to simulate a database failure
	err error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]model.User), nextID: 1}
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return &u, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return f.findBy(func(u model.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return f.findBy(func(u model.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) findBy(match func(model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", "?")
}

func (f *fakeUserRepo) Create(ctx context.Context, nu model.NewUser) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if err := f.ensureFree(0, &nu.Username, &nu.Email); err != nil {
		return nil, err
	}
	u := model.User{
		ID:           f.nextID,
		Username:     nu.Username,
		Email:        nu.Email,
		FullName:     nu.FullName,
		PasswordHash: nu.PasswordHash,
	}
	f.nextID++
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	if err := f.ensureFree(id, patch.Username, patch.Email); err != nil {
		return nil, err
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.FullName != nil {
		u.FullName = ptr(*patch.FullName)
	}
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	delete(f.users, id)
	return &u, nil
}

func (f *fakeUserRepo) ensureFree(self int64, username, email *string) error {
	for _, u := range f.users {
		if u.ID == self {
			continue
		}
		if username != nil && u.Username == *username {
			return apperror.Conflict("user", "username")
		}
		if email != nil && u.Email == *email {
			return apperror.Conflict("user", "email")
		}
	}
	return nil
}

// fakeCatalog is an in-memory CatalogRepository plus ProductRepository.
type fakeCatalog struct {
	categories map[int64]model.Category
	suppliers  map[int64]model.Supplier
	discounts  map[int64]model.Discount
	taxes      map[int64]model.Tax
	products   map[int64]model.Product
	nextID     int64

	err error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: make(map[int64]model.Category),
		suppliers:  make(map[int64]model.Supplier),
		discounts:  make(map[int64]model.Discount),
		taxes:      make(map[int64]model.Tax),
		products:   make(map[int64]model.Product),
		nextID:     1,
	}
}

func (f *fakeCatalog) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func values[T any](m map[int64]T) []T {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func lookup[T any](m map[int64]T, resource string, id int64) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, apperror.NotFound(resource, strconv.FormatInt(id, 10))
	}
	return &v, nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]model.Category, error) {
	return values(f.categories), f.err
}

func (f *fakeCatalog) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return lookup(f.categories, "category", id)
}

func (f *fakeCatalog) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.ID = f.id()
	f.categories[c.ID] = c
	return &c, nil
}

func (f *fakeCatalog) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return values(f.suppliers), f.err
}

func (f *fakeCatalog) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	return lookup(f.suppliers, "supplier", id)
}

func (f *fakeCatalog) CreateSupplier(ctx context.Context, s model.Supplier) (*model.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	s.ID = f.id()
	f.suppliers[s.ID] = s
	return &s, nil
}

func (f *fakeCatalog) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	return values(f.discounts), f.err
}

func (f *fakeCatalog) GetDiscount(ctx context.Context, id int64) (*model.Discount, error) {
	return lookup(f.discounts, "discount", id)
}

func (f *fakeCatalog) CreateDiscount(ctx context.Context, d model.Discount) (*model.Discount, error) {
	if f.err != nil {
		return nil, f.err
	}
	d.ID = f.id()
	f.discounts[d.ID] = d
	return &d, nil
}

func (f *fakeCatalog) ListTaxes(ctx context.Context) ([]model.Tax, error) {
	return values(f.taxes), f.err
}

func (f *fakeCatalog) GetTax(ctx context.Context, id int64) (*model.Tax, error) {
	return lookup(f.taxes, "tax", id)
}

func (f *fakeCatalog) CreateTax(ctx context.Context, t model.Tax) (*model.Tax, error) {
	if f.err != nil {
		return nil, f.err
	}
	t.ID = f.id()
	f.taxes[t.ID] = t
	return &t, nil
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	return values(f.products), f.err
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return lookup(f.products, "product", id)
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = f.id()
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeCatalog) UpdateProduct(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("product", strconv.FormatInt(id, 10))
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.CategoryID != nil {
		p.CategoryID = *upd.CategoryID
	}
	p.DiscountID = model.ApplyRef(p.DiscountID, upd.DiscountID)
	p.TaxID = model.ApplyRef(p.TaxID, upd.TaxID)
	p.SupplierID = model.ApplyRef(p.SupplierID, upd.SupplierID)
	f.products[id] = p
	return &p, nil
}

func (f *fakeCatalog) DeleteProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("product", strconv.FormatInt(id, 10))
	}
	delete(f.products, id)
	return &p, nil
}
