package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/api/responses"
	"github.com/lokapasar/lokapasar-backend/api/validators"
	discountsvc "github.com/lokapasar/lokapasar-backend/internal/discounts"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
	"github.com/lokapasar/lokapasar-backend/pkg/logger"
)

type tierRequest struct {
	Label       *string          `json:"label,omitempty"`
	MinQuantity *int64           `json:"min_quantity,omitempty"`
	MaxQuantity *int64           `json:"max_quantity,omitempty"`
	MinAmount   *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount   *decimal.Decimal `json:"max_amount,omitempty"`
	ValueType   string           `json:"value_type" validate:"required,oneof=percentage nominal"`
	Value       decimal.Decimal  `json:"value"`
	Priority    int              `json:"priority" validate:"min=0"`
}

type discountRequest struct {
	Name       string           `json:"name" validate:"required"`
	Type       string           `json:"type" validate:"required,oneof=product unit"`
	ValueType  string           `json:"value_type" validate:"required,oneof=percentage nominal tiered"`
	Value      decimal.Decimal  `json:"value"`
	ProductIDs []int64          `json:"product_ids,omitempty"`
	UnitIDs    []int64          `json:"unit_ids,omitempty"`
	Active     bool             `json:"active"`
	StartAt    *time.Time       `json:"start_at,omitempty"`
	EndAt      *time.Time       `json:"end_at,omitempty"`
	Tiers      []tierRequest    `json:"tiers,omitempty" validate:"omitempty,dive"`
}

func (req discountRequest) toInput() (discountsvc.DiscountInput, error) {
	scope, err := enums.ParseDiscountScope(strings.TrimSpace(req.Type))
	if err != nil {
		return discountsvc.DiscountInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	valueType, err := enums.ParseDiscountValueType(strings.TrimSpace(req.ValueType))
	if err != nil {
		return discountsvc.DiscountInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid value type")
	}

	input := discountsvc.DiscountInput{
		Name:       req.Name,
		ScopeType:  scope,
		ValueType:  valueType,
		Value:      req.Value,
		ProductIDs: req.ProductIDs,
		UnitIDs:    req.UnitIDs,
		Active:     req.Active,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
	}
	for _, tier := range req.Tiers {
		tierValueType, err := enums.ParseDiscountValueType(strings.TrimSpace(tier.ValueType))
		if err != nil {
			return discountsvc.DiscountInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier value type")
		}
		input.Tiers = append(input.Tiers, discountsvc.TierInput{
			Label:       tier.Label,
			MinQuantity: tier.MinQuantity,
			MaxQuantity: tier.MaxQuantity,
			MinAmount:   tier.MinAmount,
			MaxAmount:   tier.MaxAmount,
			ValueType:   tierValueType,
			Value:       tier.Value,
			Priority:    tier.Priority,
		})
	}
	return input, nil
}

func CreateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		discount, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, discount)
	}
}

func UpdateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discountID, err := validators.ParseIDParam(r, "discountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		discount, err := svc.Update(r.Context(), discountID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discount)
	}
}

func DeleteDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discountID, err := validators.ParseIDParam(r, "discountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), discountID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func GetDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discountID, err := validators.ParseIDParam(r, "discountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		discount, err := svc.Get(r.Context(), discountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discount)
	}
}

func ListDiscounts(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		discounts, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discounts)
	}
}
