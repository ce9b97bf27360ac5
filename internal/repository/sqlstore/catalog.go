package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/repository"
)

var (
	_ repository.CategoryRepository = (*Store)(nil)
	_ repository.SupplierRepository = (*Store)(nil)
	_ repository.DiscountRepository = (*Store)(nil)
	_ repository.TaxRepository      = (*Store)(nil)
)

type rowScanner interface{ Scan(...any) error }

// list runs query on the pool and scans every row with scan. It never
// returns a nil slice so empty tables encode as [] rather than null.
func list[T any](ctx context.Context, s *Store, op, query string, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, s.fail(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return out, nil
}

// get loads one row by id, mapping no rows to ErrNotFound.
func get[T any](ctx context.Context, s *Store, resource, query string, id int64, scan func(rowScanner) (T, error)) (*T, error) {
	v, err := scan(s.conn.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		return nil, s.fail("getting "+resource, notFoundOr(resource, id, err))
	}
	return &v, nil
}

func notFoundOr(resource string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(resource, strconv.FormatInt(id, 10))
	}
	return err
}

// insert runs an INSERT ... RETURNING <id> in its own transaction.
func (s *Store) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	var id int64
	err := s.withTx(ctx, op, func(ctx context.Context, tx dbtx) error {
		return tx.QueryRowContext(ctx, s.q(query), args...).Scan(&id)
	})
	return id, err
}

// =========================================================================
// CATEGORIES
// =========================================================================

func scanCategory(r rowScanner) (model.Category, error) {
	var c model.Category
	err := r.Scan(&c.ID, &c.Name)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	return list(ctx, s, "listing categories",
		`SELECT id_categoria, nombre_categoria FROM categorias ORDER BY id_categoria`, scanCategory)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return get(ctx, s, "category",
		`SELECT id_categoria, nombre_categoria FROM categorias WHERE id_categoria = ?`, id, scanCategory)
}

func (s *Store) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	id, err := s.insert(ctx, "creating category",
		`INSERT INTO categorias (nombre_categoria) VALUES (?) RETURNING id_categoria`, c.Name)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// =========================================================================
// SUPPLIERS
// =========================================================================

const supplierColumns = `id_proveedor, nombre, telefono, email, direccion`

func scanSupplier(r rowScanner) (model.Supplier, error) {
	var p model.Supplier
	err := r.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Address)
	return p, err
}

func (s *Store) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return list(ctx, s, "listing suppliers",
		`SELECT `+supplierColumns+` FROM proveedores ORDER BY id_proveedor`, scanSupplier)
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	return get(ctx, s, "supplier",
		`SELECT `+supplierColumns+` FROM proveedores WHERE id_proveedor = ?`, id, scanSupplier)
}

func (s *Store) CreateSupplier(ctx context.Context, p model.Supplier) (*model.Supplier, error) {
	id, err := s.insert(ctx, "creating supplier",
		`INSERT INTO proveedores (nombre, telefono, email, direccion) VALUES (?, ?, ?, ?) RETURNING id_proveedor`,
		p.Name, p.Phone, p.Email, p.Address)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// =========================================================================
// DISCOUNTS
// =========================================================================

func scanDiscount(r rowScanner) (model.Discount, error) {
	var d model.Discount
	err := r.Scan(&d.ID, &d.Name, &d.Percentage)
	return d, err
}

func (s *Store) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	return list(ctx, s, "listing discounts",
		`SELECT id_descuento, nombre, porcentaje FROM descuentos ORDER BY id_descuento`, scanDiscount)
}

func (s *Store) GetDiscount(ctx context.Context, id int64) (*model.Discount, error) {
	return get(ctx, s, "discount",
		`SELECT id_descuento, nombre, porcentaje FROM descuentos WHERE id_descuento = ?`, id, scanDiscount)
}

func (s *Store) CreateDiscount(ctx context.Context, d model.Discount) (*model.Discount, error) {
	id, err := s.insert(ctx, "creating discount",
		`INSERT INTO descuentos (nombre, porcentaje) VALUES (?, ?) RETURNING id_descuento`,
		d.Name, d.Percentage)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return &d, nil
}

// =========================================================================
// TAXES
// =========================================================================

func scanTax(r rowScanner) (model.Tax, error) {
	var t model.Tax
	err := r.Scan(&t.ID, &t.Name, &t.Percentage)
	return t, err
}

func (s *Store) ListTaxes(ctx context.Context) ([]model.Tax, error) {
	return list(ctx, s, "listing taxes",
		`SELECT id_iva, nombre, porcentaje FROM impuestos ORDER BY id_iva`, scanTax)
}

func (s *Store) GetTax(ctx context.Context, id int64) (*model.Tax, error) {
	return get(ctx, s, "tax",
		`SELECT id_iva, nombre, porcentaje FROM impuestos WHERE id_iva = ?`, id, scanTax)
}

func (s *Store) CreateTax(ctx context.Context, t model.Tax) (*model.Tax, error) {
	id, err := s.insert(ctx, "creating tax",
		`INSERT INTO impuestos (nombre, porcentaje) VALUES (?, ?) RETURNING id_iva`,
		t.Name, t.Percentage)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return &t, nil
}
