package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/pricing"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
	"github.com/lokapasar/lokapasar-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type paymentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.PaymentMethod, error)
}

type unitLoader interface {
	FindUnitByID(ctx context.Context, id int64) (*models.Unit, error)
}

type activeDiscountLister interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Discount, error)
}

type cartClearer interface {
	ClearInTx(ctx context.Context, tx *gorm.DB, userID int64) error
}

type proofStore interface {
	SaveDataURL(dataURL, prefix string) (string, error)
}

// Service exposes order placement and lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	GetForUser(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID int64) ([]OrderDTO, error)
	List(ctx context.Context) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID int64, target enums.OrderStatus) (*OrderDTO, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, target enums.PaymentStatus) (*OrderDTO, error)
}

// ItemInput is one requested order line.
type ItemInput struct {
	UnitID   int64
	Quantity int
}

// PlaceOrderInput carries everything needed to place an order. Prices are
// never taken from the client; the catalog rows are authoritative.
type PlaceOrderInput struct {
	UserID          int64
	PaymentID       int64
	Items           []ItemInput
	ShippingType    enums.ShippingType
	ShippingAddress *string
	Notes           *string
	ProofBase64     *string
	Source          enums.OrderSource
}

// StockShortfall names the unit that could not be fulfilled.
type StockShortfall struct {
	UnitID      int64  `json:"unit_id"`
	ProductName string `json:"product_name"`
	UnitName    string `json:"unit_name"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

type service struct {
	tx           txRunner
	repo         *Repository
	cartRepo     cartClearer
	userRepo     userFinder
	paymentRepo  paymentFinder
	unitRepo     unitLoader
	discountRepo activeDiscountLister
	proofs       proofStore
	metrics      *metrics.OrderMetrics
	now          func() time.Time
}

// NewService constructs the order service.
func NewService(
	tx txRunner,
	repo *Repository,
	cartRepo cartClearer,
	userRepo userFinder,
	paymentRepo paymentFinder,
	unitRepo unitLoader,
	discountRepo activeDiscountLister,
	proofs proofStore,
	orderMetrics *metrics.OrderMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if paymentRepo == nil {
		return nil, fmt.Errorf("payment method repository required")
	}
	if unitRepo == nil {
		return nil, fmt.Errorf("unit loader required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if proofs == nil {
		return nil, fmt.Errorf("proof store required")
	}
	return &service{
		tx:           tx,
		repo:         repo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		unitRepo:     unitRepo,
		discountRepo: discountRepo,
		proofs:       proofs,
		metrics:      orderMetrics,
		now:          time.Now,
	}, nil
}

type pricedLine struct {
	unit           *models.Unit
	productName    string
	quantity       int
	unitPrice      decimal.Decimal
	discountAmount decimal.Decimal
	lineTotal      decimal.Decimal
}

// PlaceOrder revalidates stock, recomputes authoritative pricing, and
// writes the order, its items, the stock decrements, and the optional cart
// clear in one transaction.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	started := s.now()
	dto, err := s.placeOrder(ctx, input)

	source := input.Source.String()
	s.metrics.ObserveDuration(source, time.Since(started))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.metrics.IncFailed(source, code)
		return nil, err
	}
	s.metrics.IncPlaced(source)
	return dto, nil
}

func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if err := validatePlaceOrderInput(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	payment, err := s.paymentRepo.FindByID(ctx, input.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}

	now := s.now()
	discounts, err := s.discountRepo.ListActive(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active discounts")
	}

	// Load every unit up front; the whole request forms the pricing basket
	// so tiered thresholds see aggregate quantities.
	lines := make([]pricedLine, len(input.Items))
	basket := make([]pricing.Item, len(input.Items))
	for i, item := range input.Items {
		unit, err := s.unitRepo.FindUnitByID(ctx, item.UnitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("unit %d not found", item.UnitID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
		}

		productName := ""
		if unit.Product != nil {
			productName = unit.Product.Name
		}
		if unit.Stock < item.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeStock,
				fmt.Sprintf("insufficient stock for %s %s", productName, unit.Name)).
				WithDetails(StockShortfall{
					UnitID:      unit.ID,
					ProductName: productName,
					UnitName:    unit.Name,
					Available:   unit.Stock,
					Requested:   item.Quantity,
				})
		}

		lines[i] = pricedLine{unit: unit, productName: productName, quantity: item.Quantity}
		basket[i] = pricing.Item{
			ProductID: unit.ProductID,
			UnitID:    unit.ID,
			Quantity:  item.Quantity,
			UnitPrice: unit.Price,
		}
	}

	resolver := pricing.NewResolver(now)
	total := decimal.Zero
	for i := range lines {
		unit := lines[i].unit
		result := resolver.Resolve(unit.Price, unit.ProductID, unit.ID, discounts, basket)
		lines[i].unitPrice = unit.Price
		lines[i].discountAmount = result.DiscountAmount
		lines[i].lineTotal = result.Price.Mul(decimal.NewFromInt(int64(lines[i].quantity)))
		total = total.Add(lines[i].lineTotal)
	}

	proofPath, err := s.resolveProof(payment, input.ProofBase64)
	if err != nil {
		return nil, err
	}

	number, err := newOrderNumber(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
	}

	order := &models.Order{
		UserID:          input.UserID,
		OrderNumber:     number,
		TotalAmount:     total,
		Status:          enums.OrderStatusPending,
		PaymentID:       payment.ID,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		ShippingType:    input.ShippingType,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		PaymentProof:    proofPath,
	}
	if proofPath != nil {
		order.PaymentStatus = enums.PaymentStatusConfirmation
	}
	for i := range lines {
		order.Items = append(order.Items, models.OrderItem{
			UnitID:         lines[i].unit.ID,
			ProductName:    lines[i].productName,
			UnitName:       lines[i].unit.Name,
			Quantity:       lines[i].quantity,
			UnitPrice:      lines[i].unitPrice,
			DiscountAmount: lines[i].discountAmount,
			TotalPrice:     lines[i].lineTotal,
		})
	}

	var createdID int64
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		created, err := txRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		createdID = created.ID

		// Conditional decrement closes the window between the pre-check
		// and the write: losing the race fails the whole transaction.
		for i := range lines {
			ok, err := txRepo.DecrementStock(ctx, lines[i].unit.ID, lines[i].quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStock,
					fmt.Sprintf("insufficient stock for %s %s", lines[i].productName, lines[i].unit.Name)).
					WithDetails(StockShortfall{
						UnitID:      lines[i].unit.ID,
						ProductName: lines[i].productName,
						UnitName:    lines[i].unit.Name,
						Requested:   lines[i].quantity,
					})
			}
		}

		if input.Source == enums.OrderSourceCart {
			if err := s.cartRepo.ClearInTx(ctx, tx, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	placed, err := s.repo.FindByID(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load placed order")
	}
	return NewOrderDTO(placed), nil
}

// GetForUser returns the order when it belongs to the user.
func (s *service) GetForUser(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return NewOrderDTO(order), nil
}

// ListForUser returns the user's orders.
func (s *service) ListForUser(ctx context.Context, userID int64) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toDTOs(rows), nil
}

// List returns every order for the admin surface.
func (s *service) List(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toDTOs(rows), nil
}

// UpdateStatus moves the order along the fulfillment state machine.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, target enums.OrderStatus) (*OrderDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(target, order.ShippingType) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}
	if err := s.repo.UpdateStatus(ctx, orderID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	order.Status = target
	return NewOrderDTO(order), nil
}

// UpdatePaymentStatus moves the order along the payment state machine.
// Refunds additionally require a delivered, fully paid order.
func (s *service) UpdatePaymentStatus(ctx context.Context, orderID int64, target enums.PaymentStatus) (*OrderDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentStatus.CanTransition(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move payment from %s to %s", order.PaymentStatus, target))
	}
	if target == enums.PaymentStatusRefunded && order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be refunded")
	}
	if err := s.repo.UpdatePaymentStatus(ctx, orderID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment status")
	}
	order.PaymentStatus = target
	return NewOrderDTO(order), nil
}

func (s *service) load(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// resolveProof persists the proof image for non-cash methods. Cash orders
// never attach proof at creation.
func (s *service) resolveProof(payment *models.PaymentMethod, proofBase64 *string) (*string, error) {
	if proofBase64 == nil || strings.TrimSpace(*proofBase64) == "" {
		return nil, nil
	}
	if isCashMethod(payment.Name) {
		return nil, nil
	}
	path, err := s.proofs.SaveDataURL(*proofBase64, "proof")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store payment proof")
	}
	return &path, nil
}

// isCashMethod detects cash-like payment methods by display name. The
// Indonesian "tunai" is matched alongside "cash".
func isCashMethod(name string) bool {
	lowered := strings.ToLower(name)
	return strings.Contains(lowered, "cash") || strings.Contains(lowered, "tunai")
}

func validatePlaceOrderInput(input PlaceOrderInput) error {
	if input.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user_id must be positive")
	}
	if input.PaymentID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment_id must be positive")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for i, item := range input.Items {
		if item.UnitID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: unit_id must be positive", i))
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: quantity must be positive", i))
		}
	}
	if !input.ShippingType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping_type must be delivery or pickup")
	}
	if !input.Source.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "source must be cart or direct")
	}
	return nil
}

func toDTOs(rows []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return dtos
}
