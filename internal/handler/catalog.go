package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/inventory-api/internal/apperror"
	"github.com/sakif/inventory-api/internal/model"
	"github.com/sakif/inventory-api/internal/service"
)

// CatalogHandler serves /categorias, /proveedores, /descuentos and
// /impuestos. Listing is gated by the router; creating is open.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleListCategories serves GET /categorias
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	respond(w, h.logger, http.StatusOK)(h.catalog.ListCategories(r.Context()))
}

// HandleCreateCategory serves POST /categorias {"nombre_categoria": "Bebidas"}
func (h *CatalogHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"nombre_categoria"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	respond(w, h.logger, http.StatusCreated)(h.catalog.CreateCategory(r.Context(), req.Name))
}

// HandleListSuppliers serves GET /proveedores
func (h *CatalogHandler) HandleListSuppliers(w http.ResponseWriter, r *http.Request) {
	respond(w, h.logger, http.StatusOK)(h.catalog.ListSuppliers(r.Context()))
}

// HandleCreateSupplier serves POST /proveedores
// {"nombre": "...", "telefono": "...", "email": "...", "direccion": "..."}
func (h *CatalogHandler) HandleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req model.Supplier
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.ID = 0
	respond(w, h.logger, http.StatusCreated)(h.catalog.CreateSupplier(r.Context(), req))
}

// percentageRequest is the body of POST /descuentos and POST /impuestos.
type percentageRequest struct {
	Name       string   `json:"nombre"`
	Percentage *float64 `json:"porcentaje"`
}

func (req percentageRequest) validate() error {
	if req.Percentage == nil {
		return apperror.ValidationFailed("porcentaje", "porcentaje is required")
	}
	return nil
}

// HandleListDiscounts serves GET /descuentos
func (h *CatalogHandler) HandleListDiscounts(w http.ResponseWriter, r *http.Request) {
	respond(w, h.logger, http.StatusOK)(h.catalog.ListDiscounts(r.Context()))
}

// HandleCreateDiscount serves POST /descuentos {"nombre": "Verano", "porcentaje": 15}
func (h *CatalogHandler) HandleCreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req percentageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}
	respond(w, h.logger, http.StatusCreated)(h.catalog.CreateDiscount(r.Context(), req.Name, *req.Percentage))
}

// HandleListTaxes serves GET /impuestos
func (h *CatalogHandler) HandleListTaxes(w http.ResponseWriter, r *http.Request) {
	respond(w, h.logger, http.StatusOK)(h.catalog.ListTaxes(r.Context()))
}

// HandleCreateTax serves POST /impuestos {"nombre": "IVA", "porcentaje": 19}
func (h *CatalogHandler) HandleCreateTax(w http.ResponseWriter, r *http.Request) {
	var req percentageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}
	respond(w, h.logger, http.StatusCreated)(h.catalog.CreateTax(r.Context(), req.Name, *req.Percentage))
}

// respond returns a function that writes a service result: the value with
// status on success, the mapped error otherwise. It lets a handler pass a
// (value, error) call straight through.
func respond(w http.ResponseWriter, logger *slog.Logger, status int) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, status, v)
	}
}
