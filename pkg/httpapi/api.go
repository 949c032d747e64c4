package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/otel"
	"storefront/pkg/product"
)

const (
	msgNotFound     = "Product not found"
	msgStorageLimit = "Product storage limit reached"
	msgDeleted      = "Product deleted successfully"
	msgBadBody      = "Invalid request body"
	msgInternal     = "Internal server error"
)

// createProductRequest is the body of POST /api/products.
type createProductRequest struct {
	Name  string        `json:"name"`
	Price product.Price `json:"price"`
}

// listProductsHandler lists products.
// @Summary List products
// @Description Returns every product in insertion order
// @Tags products
// @Produce json
// @Success 200 {array} product.Product
// @Router /api/products [get]
func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()

	products, err := s.products.List(ctx)
	if err != nil {
		s.log.Error(ctx, "list products", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// getProductHandler retrieves a product by ID.
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} product.Product
// @Failure 404 {object} httpapi.errorResponse
// @Router /api/products/{id} [get]
func (s *Server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getProductHandler")
	defer span.End()

	p, err := s.products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.log.Error(ctx, "get product", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// createProductHandler creates a new product.
// @Summary Create product
// @Description Adds a product unless the catalog already holds its maximum
// @Tags products
// @Accept json
// @Produce json
// @Param product body httpapi.createProductRequest true "Product"
// @Success 201 {object} product.Product
// @Failure 400 {object} httpapi.errorResponse
// @Router /api/products [post]
func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createProductHandler")
	defer span.End()

	var req createProductRequest
	if err := decodeObject(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	p := product.New(req.Name, req.Price)
	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, product.ErrCapacity) {
			s.metrics.RecordRejection("products")
			writeError(w, http.StatusBadRequest, msgStorageLimit)
			return
		}
		s.log.Error(ctx, "create product", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	s.log.Debug(ctx, "product created", "id", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// updateProductHandler updates an existing product.
// @Summary Update product
// @Description Only the fields present in the body are changed
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body product.Patch true "Fields to change"
// @Success 200 {object} product.Product
// @Failure 404 {object} httpapi.errorResponse
// @Router /api/products/{id} [put]
func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateProductHandler")
	defer span.End()

	var patch product.Patch
	if err := decodeObject(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	p, err := s.products.Update(ctx, mux.Vars(r)["id"], patch)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.log.Error(ctx, "update product", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// deleteProductHandler removes a product.
// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} httpapi.messageResponse
// @Failure 404 {object} httpapi.errorResponse
// @Router /api/products/{id} [delete]
func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteProductHandler")
	defer span.End()

	if err := s.products.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.log.Error(ctx, "delete product", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgDeleted})
}
