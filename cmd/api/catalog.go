package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/safar/coffee-shop/internal/auth"
	"github.com/safar/coffee-shop/internal/database"
	"github.com/safar/coffee-shop/internal/logging"
	"github.com/safar/coffee-shop/internal/models"
	"github.com/safar/coffee-shop/internal/store"
	"github.com/shopspring/decimal"
)

type catalogReader interface {
	productGetter
	ListProductsPaged(ctx context.Context, filter store.ProductFilter, page, pageSize int) (*store.OffsetPage, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type catalogAdmin interface {
	catalogReader
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, p models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListAllCategories(ctx context.Context) ([]models.Category, error)
	ToggleCategory(ctx context.Context, id int64) (*models.Category, error)
}

type favoriteStore interface {
	Favorites(ctx context.Context, userID string) ([]string, error)
	ToggleFavorite(ctx context.Context, userID, productID string) (bool, error)
}

type productRequest struct {
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Country     string          `json:"country"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description"`
}

// decodeProduct reads and validates a product body. It writes the 400 itself
// and reports false when the body is unusable.
func decodeProduct(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return models.Product{}, false
	}

	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return models.Product{}, false
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "Price must not be negative")
		return models.Product{}, false
	}

	return models.Product{
		Name:        strings.TrimSpace(req.Name),
		Brand:       req.Brand,
		Category:    req.Category,
		Country:     req.Country,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}, true
}

func handleListProducts(catalog catalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		filter := store.ProductFilter{
			Category: r.URL.Query().Get("category"),
			Search:   r.URL.Query().Get("search"),
		}

		result, err := catalog.ListProductsPaged(r.Context(), filter, page, pageSize)
		if err != nil {
			respondInternal(w, "catalog", "list-products", "Could not load products", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleGetProduct(catalog catalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		product, err := catalog.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			respondInternal(w, "catalog", "get-product", "Could not load product", err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleListCategories(catalog catalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := catalog.ListCategories(r.Context())
		if err != nil {
			respondInternal(w, "catalog", "list-categories", "Could not load categories", err)
			return
		}

		respondJSON(w, http.StatusOK, categories)
	}
}

func handleCreateProduct(catalog catalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, ok := decodeProduct(w, r)
		if !ok {
			return
		}

		product, err := catalog.CreateProduct(r.Context(), input)
		if err != nil {
			respondInternal(w, "catalog", "create-product", "Could not create product", err)
			return
		}

		respondJSON(w, http.StatusCreated, product)
	}
}

func handleUpdateProduct(catalog catalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		input, ok := decodeProduct(w, r)
		if !ok {
			return
		}

		product, err := catalog.UpdateProduct(r.Context(), id, input)
		if err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			respondInternal(w, "catalog", "update-product", "Could not update product", err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleDeleteProduct(catalog catalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		if err := catalog.DeleteProduct(r.Context(), id); err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			respondInternal(w, "catalog", "delete-product", "Could not delete product", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAdminListCategories(catalog catalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := catalog.ListAllCategories(r.Context())
		if err != nil {
			respondInternal(w, "catalog", "list-all-categories", "Could not load categories", err)
			return
		}

		respondJSON(w, http.StatusOK, categories)
	}
}

func handleToggleCategory(catalog catalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}

		category, err := catalog.ToggleCategory(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrCategoryNotFound) {
				respondError(w, http.StatusNotFound, "Category not found")
				return
			}
			respondInternal(w, "catalog", "toggle-category", "Could not update category", err)
			return
		}

		respondJSON(w, http.StatusOK, category)
	}
}

func handleListFavorites(favorites favoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		ids, err := favorites.Favorites(r.Context(), userID)
		if errors.Is(err, database.ErrUserNotFound) {
			ids = []string{}
		} else if err != nil {
			logging.Err(logging.Fields{Component: "favorites", UserID: userID, Step: "list", Status: "error"}, err)
			respondError(w, http.StatusInternalServerError, "Could not load favorites")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"favorites": ids})
	}
}

func handleToggleFavorite(favorites favoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserIDFrom(r.Context())

		var req cartRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		productID := cartEntryID(req.ProductID)
		if productID == "" {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		favorited, err := favorites.ToggleFavorite(r.Context(), userID, productID)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				respondError(w, http.StatusNotFound, "User not found")
				return
			}
			logging.Err(logging.Fields{Component: "favorites", UserID: userID, Step: "toggle", Status: "error"}, err)
			respondError(w, http.StatusInternalServerError, "Could not update favorites")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "favorited": favorited})
	}
}
