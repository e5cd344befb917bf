package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hernandor/solpay/service/db"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type productResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int64   `json:"quantity"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func productToResponse(p *db.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type productRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int64   `json:"quantity"`
}

func (req *productRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if err := validateField("name", req.Name); err != nil {
		return err
	}
	if err := validateField("image", req.Image); err != nil {
		return err
	}
	if req.Price < 0 {
		return errors.New("price must not be negative")
	}
	if req.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

// handleCreateProduct returns a handler that adds a product to the catalog.
// POST /api/v1/products
func handleCreateProduct(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		product, err := store.CreateProduct(r.Context(), db.CreateProductParams{
			Name:     req.Name,
			Price:    req.Price,
			Image:    req.Image,
			Quantity: req.Quantity,
		})
		if err != nil {
			logger.Error("failed to create product", "name", req.Name, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Info("product created", "id", product.ID, "name", product.Name)
		writeJSON(w, productToResponse(product), http.StatusCreated)
	})
}

// handleGetProduct returns a handler that retrieves a single product.
// GET /api/v1/products/{id}
func handleGetProduct(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, "invalid product id", http.StatusBadRequest)
			return
		}

		product, err := store.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get product", "id", id, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, productToResponse(product), http.StatusOK)
	})
}

// handleListProducts returns a handler that lists the catalog, newest first.
// GET /api/v1/products?limit={n}&offset={n}
func handleListProducts(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := parsePagination(r)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		products, err := store.ListProducts(r.Context(), db.ListProductsParams{
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			logger.Error("failed to list products", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]productResponse, len(products))
		for i, p := range products {
			resp[i] = productToResponse(p)
		}

		writeJSON(w, map[string]interface{}{
			"products": resp,
		}, http.StatusOK)
	})
}

// handleUpdateProduct returns a handler that replaces a product's fields.
// PUT /api/v1/products/{id}
func handleUpdateProduct(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req productRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		product, err := store.UpdateProduct(r.Context(), db.UpdateProductParams{
			ID:       id,
			Name:     req.Name,
			Price:    req.Price,
			Image:    req.Image,
			Quantity: req.Quantity,
		})
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to update product", "id", id, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Info("product updated", "id", product.ID)
		writeJSON(w, productToResponse(product), http.StatusOK)
	})
}

// handleDeleteProduct returns a handler that removes a product.
// DELETE /api/v1/products/{id}
func handleDeleteProduct(store *db.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, "invalid product id", http.StatusBadRequest)
			return
		}

		if err := store.DeleteProduct(r.Context(), id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to delete product", "id", id, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		logger.Info("product deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	})
}

func parsePagination(r *http.Request) (limit, offset int32, err error) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, perr := strconv.ParseInt(raw, 10, 32)
		if perr != nil || n < 1 || n > maxPageSize {
			return 0, 0, errors.New("invalid limit: must be between 1 and 500")
		}
		limit = int32(n)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, perr := strconv.ParseInt(raw, 10, 32)
		if perr != nil || n < 0 {
			return 0, 0, errors.New("invalid offset: must not be negative")
		}
		offset = int32(n)
	}
	return limit, offset, nil
}
