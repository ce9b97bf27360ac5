package sqlstore

import (
	"context"

	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/repository"
)

var _ repository.ProductRepository = (*Store)(nil)

const productColumns = `id_producto, nombre_producto, precio, stock, id_categoria, id_descuento, id_iva, id_proveedor`

func scanProduct(r rowScanner) (model.Product, error) {
	var p model.Product
	err := r.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CategoryID, &p.DiscountID, &p.TaxID, &p.SupplierID)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	return list(ctx, s, "listing products",
		`SELECT `+productColumns+` FROM productos ORDER BY id_producto`, scanProduct)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return get(ctx, s, "product",
		`SELECT `+productColumns+` FROM productos WHERE id_producto = ?`, id, scanProduct)
}

// CreateProduct inserts p. A category, discount, tax or supplier id that does
// not exist fails the foreign key and comes back as ErrValidation.
func (s *Store) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	id, err := s.insert(ctx, "creating product",
		`INSERT INTO productos (nombre_producto, precio, stock, id_categoria, id_descuento, id_iva, id_proveedor)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id_producto`,
		p.Name, p.Price, p.Stock, p.CategoryID, p.DiscountID, p.TaxID, p.SupplierID)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// UpdateProduct applies the non-nil fields of upd atomically.
func (s *Store) UpdateProduct(ctx context.Context, id int64, upd model.ProductUpdate) (*model.Product, error) {
	var updated *model.Product

	err := s.withTx(ctx, "updating product", func(ctx context.Context, tx dbtx) error {
		p, err := s.productTx(ctx, tx, id)
		if err != nil {
			return err
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

		_, err = tx.ExecContext(ctx,
			s.q(`UPDATE productos SET nombre_producto = ?, precio = ?, stock = ?,
			     id_categoria = ?, id_descuento = ?, id_iva = ?, id_proveedor = ?
			     WHERE id_producto = ?`),
			p.Name, p.Price, p.Stock, p.CategoryID, p.DiscountID, p.TaxID, p.SupplierID, id)
		if err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProduct removes a product and returns it as it was.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (*model.Product, error) {
	var deleted *model.Product

	err := s.withTx(ctx, "deleting product", func(ctx context.Context, tx dbtx) error {
		p, err := s.productTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM productos WHERE id_producto = ?`), id); err != nil {
			return err
		}
		deleted = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (s *Store) productTx(ctx context.Context, tx dbtx, id int64) (*model.Product, error) {
	p, err := scanProduct(tx.QueryRowContext(ctx,
		s.q(`SELECT `+productColumns+` FROM productos WHERE id_producto = ?`), id))
	if err != nil {
		return nil, notFoundOr("product", id, err)
	}
	return &p, nil
}
