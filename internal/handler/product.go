package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/service"
)

// ProductHandler serves /productos. Only the list is gated; create, read
// by id, update and delete are open.
type ProductHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

func NewProductHandler(products *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// productRequest is the body of POST and PUT. Pointers tell an omitted field
// from a zero value.
type productRequest struct {
	Name       *string  `json:"nombre_producto"`
	Price      *float64 `json:"precio"`
	Stock      *int64   `json:"stock"`
	CategoryID *int64   `json:"id_categoria"`
	DiscountID *int64   `json:"id_descuento"`
	TaxID      *int64   `json:"id_iva"`
	SupplierID *int64   `json:"id_proveedor"`
}

// HandleList serves GET /productos
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	respond(w, h.logger, http.StatusOK)(h.products.List(r.Context()))
}

// HandleGet serves GET /productos/{id}
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respond(w, h.logger, http.StatusOK)(h.products.Get(r.Context(), id))
}

// HandleCreate serves POST /productos
//
// nombre_producto, precio, stock and id_categoria are required;
// id_descuento, id_iva and id_proveedor are optional.
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if req.Name == nil || req.Price == nil || req.Stock == nil || req.CategoryID == nil {
		writeError(w, h.logger, apperror.ValidationFailed("",
			"nombre_producto, precio, stock and id_categoria are required"))
		return
	}

	respond(w, h.logger, http.StatusCreated)(h.products.Create(r.Context(), model.Product{
		Name:       *req.Name,
		Price:      *req.Price,
		Stock:      *req.Stock,
		CategoryID: *req.CategoryID,
		DiscountID: req.DiscountID,
		TaxID:      req.TaxID,
		SupplierID: req.SupplierID,
	}))
}

// HandleUpdate serves PUT /productos/{id}, any subset of the create fields.
// An id_descuento, id_iva or id_proveedor of 0 clears that reference.
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	respond(w, h.logger, http.StatusOK)(h.products.Update(r.Context(), id, model.ProductUpdate{
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
		DiscountID: req.DiscountID,
		TaxID:      req.TaxID,
		SupplierID: req.SupplierID,
	}))
}

// HandleDelete serves DELETE /productos/{id}
func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "product deleted"})
}
