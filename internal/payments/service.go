package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

type orderStore interface {
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	SetPaymentProof(ctx context.Context, orderID int64, path string) error
}

type proofStore interface {
	SaveDataURL(dataURL, prefix string) (string, error)
}

// Service manages payment methods and proof-of-payment uploads.
type Service interface {
	Create(ctx context.Context, input MethodInput) (*PaymentMethodDTO, error)
	Update(ctx context.Context, id int64, input MethodInput) (*PaymentMethodDTO, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*PaymentMethodDTO, error)
	List(ctx context.Context, activeOnly bool) ([]PaymentMethodDTO, error)
	UploadProof(ctx context.Context, userID, orderID int64, proofBase64 string) (*string, error)
}

// MethodInput carries payment method fields for create and update.
type MethodInput struct {
	Name          string
	AccountNumber *string
	AccountHolder *string
	IsActive      bool
}

type service struct {
	repo   *Repository
	orders orderStore
	proofs proofStore
}

// NewService constructs the payment service.
func NewService(repo *Repository, orders orderStore, proofs proofStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if proofs == nil {
		return nil, fmt.Errorf("proof store required")
	}
	return &service{repo: repo, orders: orders, proofs: proofs}, nil
}

func (s *service) Create(ctx context.Context, input MethodInput) (*PaymentMethodDTO, error) {
	if err := validateMethodInput(input); err != nil {
		return nil, err
	}
	method := &models.PaymentMethod{
		Name:          strings.TrimSpace(input.Name),
		AccountNumber: input.AccountNumber,
		AccountHolder: input.AccountHolder,
		IsActive:      input.IsActive,
	}
	created, err := s.repo.Create(ctx, method)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment method name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert payment method")
	}
	return NewPaymentMethodDTO(created), nil
}

func (s *service) Update(ctx context.Context, id int64, input MethodInput) (*PaymentMethodDTO, error) {
	if err := validateMethodInput(input); err != nil {
		return nil, err
	}
	method, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	method.Name = strings.TrimSpace(input.Name)
	method.AccountNumber = input.AccountNumber
	method.AccountHolder = input.AccountHolder
	method.IsActive = input.IsActive

	updated, err := s.repo.Update(ctx, method)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment method name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment method")
	}
	return NewPaymentMethodDTO(updated), nil
}

// Delete refuses to remove a method that orders already reference; those
// rows snapshot the method by id and must keep resolving.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountOrdersByMethod(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders by method")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			"payment method has order history and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete payment method")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*PaymentMethodDTO, error) {
	method, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPaymentMethodDTO(method), nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]PaymentMethodDTO, error) {
	methods, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list payment methods")
	}
	dtos := make([]PaymentMethodDTO, 0, len(methods))
	for i := range methods {
		dtos = append(dtos, *NewPaymentMethodDTO(&methods[i]))
	}
	return dtos, nil
}

// UploadProof stores a proof-of-payment image for the user's own order and
// moves payment_status to menunggu_konfirmasi. Cash orders carry no proof.
func (s *service) UploadProof(ctx context.Context, userID, orderID int64, proofBase64 string) (*string, error) {
	if strings.TrimSpace(proofBase64) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof image required")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	method, err := s.load(ctx, order.PaymentID)
	if err != nil {
		return nil, err
	}
	if isCashMethod(method.Name) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"cash orders do not take payment proof")
	}
	switch order.PaymentStatus {
	case enums.PaymentStatusUnpaid, enums.PaymentStatusConfirmation:
		// re-uploads before confirmation replace the previous proof
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot upload proof for a %s order", order.PaymentStatus))
	}

	path, err := s.proofs.SaveDataURL(proofBase64, "proof")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store payment proof")
	}
	if err := s.orders.SetPaymentProof(ctx, orderID, path); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set payment proof")
	}
	return &path, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	method, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	return method, nil
}

// isCashMethod mirrors the order placement detection: "cash" or the
// Indonesian "tunai" in the display name marks an over-the-counter method.
func isCashMethod(name string) bool {
	lowered := strings.ToLower(name)
	return strings.Contains(lowered, "cash") || strings.Contains(lowered, "tunai")
}

func validateMethodInput(input MethodInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return nil
}
