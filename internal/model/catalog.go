package model

// Category groups products. Every product belongs to exactly one.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Supplier is where a product is bought from. Only the name is required.
type Supplier struct {
	ID      int64   `json:"id"`
	Name    string  `json:"nombre"`
	Phone   *string `json:"telefono"`
	Email   *string `json:"email"`
	Address *string `json:"direccion"`
}

// Discount is a percentage off, 0 to 100.
type Discount struct {
	ID         int64   `json:"id"`
	Name       string  `json:"nombre"`
	Percentage float64 `json:"porcentaje"`
}

// Tax is a percentage on top, 0 to 100.
type Tax struct {
	ID         int64   `json:"id"`
	Name       string  `json:"nombre"`
	Percentage float64 `json:"porcentaje"`
}

// Product references its category, discount, tax and supplier by id only.
// Callers that need the related record look it up through its own
// repository.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"nombre"`
	Price      float64 `json:"precio"`
	Stock      int64   `json:"stock"`
	CategoryID int64   `json:"categoria"`
	DiscountID *int64  `json:"descuento"`
	TaxID      *int64  `json:"iva"`
	SupplierID *int64  `json:"proveedor"`
}

// ProductUpdate is a partial update; nil fields are left unchanged. Ids are
// always positive, so a 0 in DiscountID, TaxID or SupplierID clears that
// reference. CategoryID is required and cannot be cleared.
type ProductUpdate struct {
	Name       *string
	Price      *float64
	Stock      *int64
	CategoryID *int64
	DiscountID *int64
	TaxID      *int64
	SupplierID *int64
}

// ApplyRef returns the value of an optional reference after an update:
// cur when upd is nil, nil when upd is 0, upd otherwise.
func ApplyRef(cur, upd *int64) *int64 {
	switch {
	case upd == nil:
		return cur
	case *upd == 0:
		return nil
	default:
		return upd
	}
}
