package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/api/responses"
	"github.com/lokapasar/lokapasar-backend/api/validators"
	catalogsvc "github.com/lokapasar/lokapasar-backend/internal/catalog"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
	"github.com/lokapasar/lokapasar-backend/pkg/images"
	"github.com/lokapasar/lokapasar-backend/pkg/logger"
)

func ListCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func CreateCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.CreateCategory(r.Context(), payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

type unitRequest struct {
	Name       string          `json:"name" validate:"required"`
	QtyPerUnit int             `json:"qty_per_unit" validate:"required,min=1"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock" validate:"min=0"`
}

func (u unitRequest) toInput() catalogsvc.UnitInput {
	return catalogsvc.UnitInput{
		Name:       u.Name,
		QtyPerUnit: u.QtyPerUnit,
		Price:      u.Price,
		Stock:      u.Stock,
	}
}

type createProductRequest struct {
	Name        string        `json:"name" validate:"required"`
	Description *string       `json:"description,omitempty"`
	ImageBase64 *string       `json:"image_base64,omitempty"`
	CategoryID  *int64        `json:"category_id,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
	Units       []unitRequest `json:"units" validate:"required,min=1,dive"`
}

func CreateProduct(svc catalogsvc.Service, imgs *images.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.CreateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			CategoryID:  payload.CategoryID,
			IsActive:    true,
		}
		if payload.IsActive != nil {
			input.IsActive = *payload.IsActive
		}
		for _, unit := range payload.Units {
			input.Units = append(input.Units, unit.toInput())
		}

		if payload.ImageBase64 != nil && imgs != nil {
			path, err := imgs.SaveDataURL(*payload.ImageBase64, "product")
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store product image"))
				return
			}
			input.ImagePath = &path
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageBase64 *string `json:"image_base64,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func UpdateProduct(svc catalogsvc.Service, imgs *images.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.UpdateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			CategoryID:  payload.CategoryID,
			IsActive:    payload.IsActive,
		}
		if payload.ImageBase64 != nil && imgs != nil {
			path, err := imgs.SaveDataURL(*payload.ImageBase64, "product")
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store product image"))
				return
			}
			input.ImagePath = &path
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func GetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts serves the storefront (active products only) and the admin
// catalog (everything) from the same handler.
func ListProducts(svc catalogsvc.Service, publicOnly bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context(), publicOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func CreateUnit(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload unitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.CreateUnit(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, unit)
	}
}

func UpdateUnit(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unitID, err := validators.ParseIDParam(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload unitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.UpdateUnit(r.Context(), unitID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, unit)
	}
}

func DeleteUnit(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unitID, err := validators.ParseIDParam(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteUnit(r.Context(), unitID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
