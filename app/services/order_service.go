package services

import (
	"context"
	"log"
	"strings"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
	"github.com/modaltela/modal-tela-api/app/utils/calc"
	"github.com/modaltela/modal-tela-api/app/utils/format"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderNumberAttempts = 5

type BillingInput struct {
	FirstName  string `json:"first_name" validate:"required,max=30"`
	LastName   string `json:"last_name" validate:"required,max=30"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required,max=50"`
	Department string `json:"department" validate:"required,max=50"`
	PostalCode string `json:"postal_code" validate:"required,max=10"`
}

type ShippingInput struct {
	FirstName  string `json:"first_name" validate:"required,max=30"`
	LastName   string `json:"last_name" validate:"required,max=30"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required,max=50"`
	Department string `json:"department" validate:"required,max=50"`
	PostalCode string `json:"postal_code" validate:"required,max=10"`
}

// OrderLineInput has no price: line prices always come from the catalog.
type OrderLineInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity" validate:"min=1"`
}

type CreateOrderInput struct {
	Billing   BillingInput     `json:"billing"`
	Shipping  ShippingInput    `json:"shipping"`
	Items     []OrderLineInput `json:"items" validate:"required,min=1,dive"`
	ClearCart bool             `json:"clear_cart"`
}

type ListOrdersInput struct {
	Status          string
	AssignedAdminID string
	Page            int
	PageSize        int
}

type UpdateStatusInput struct {
	Status          string  `json:"status" validate:"required"`
	TrackingNumber  *string `json:"tracking_number" validate:"omitempty,max=50"`
	ShippingCompany *string `json:"shipping_company" validate:"omitempty,max=100"`
	Notes           string  `json:"notes"`
}

type AssignOrderInput struct {
	AdminID string `json:"admin_id" validate:"required"`
}

type RejectOrderInput struct {
	Reason string `json:"reason" validate:"required"`
}

type PreparationInput struct {
	Items map[string]bool `json:"items" validate:"required"`
	Notes string          `json:"notes"`
}

type LookupOrderInput struct {
	OrderNumber string `json:"order_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

type OrderService struct {
	db            *gorm.DB
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	historyRepo   repositories.OrderStatusHistoryRepository
	productRepo   repositories.ProductRepositoryImpl
	variantRepo   repositories.ProductVariantRepository
	userRepo      repositories.UserRepositoryImpl
	guests        *GuestService
	carts         *CartService
	assignee      *AssigneeResolver
	money         *format.MoneyFormatter
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repositories.OrderRepository,
	orderItemRepo repositories.OrderItemRepository,
	historyRepo repositories.OrderStatusHistoryRepository,
	productRepo repositories.ProductRepositoryImpl,
	variantRepo repositories.ProductVariantRepository,
	userRepo repositories.UserRepositoryImpl,
	guests *GuestService,
	carts *CartService,
	assignee *AssigneeResolver,
	money *format.MoneyFormatter,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		historyRepo:   historyRepo,
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		userRepo:      userRepo,
		guests:        guests,
		carts:         carts,
		assignee:      assignee,
		money:         money,
	}
}

func (s *OrderService) View(order *models.Order) *OrderView {
	return newOrderView(order, s.money)
}

func actorID(actor policy.Actor) *string {
	if !actor.IsAuthenticated() {
		return nil
	}
	id := actor.UserID
	return &id
}

// priceLines resolves every line against the catalog before anything is written.
func (s *OrderService) priceLines(ctx context.Context, tx *gorm.DB, lines []OrderLineInput) ([]models.OrderItem, decimal.Decimal, error) {
	products := s.productRepo.WithTx(tx)
	variants := s.variantRepo.WithTx(tx)

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, err := products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, decimal.Zero, apperrors.Unexpected("could not load product", err)
		}
		if product == nil || !product.IsActive {
			return nil, decimal.Zero, apperrors.NotFound("product " + line.ProductID + " not found")
		}

		item := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		}
		if line.VariantID != nil && *line.VariantID != "" {
			variant, err := variants.FindByID(ctx, *line.VariantID)
			if err != nil {
				return nil, decimal.Zero, apperrors.Unexpected("could not load variant", err)
			}
			if variant == nil || variant.ProductID != product.ID {
				return nil, decimal.Zero, apperrors.NotFound("variant " + *line.VariantID + " not found")
			}
			variantID := variant.ID
			item.VariantID = &variantID
			item.Size = variant.Size
			item.Color = variant.Color
			item.Price = variant.PriceWith(product.Price)
		}
		subtotal = subtotal.Add(calc.LineTotal(item.Price, item.Quantity))
		items = append(items, item)
	}
	return items, subtotal, nil
}

func (s *OrderService) newOrderNumber(ctx context.Context, orders repositories.OrderRepository) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		number := models.NewOrderNumber()
		exists, err := orders.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperrors.Conflict("could not allocate an order number, please retry")
}

// Create places an order for the signed-in user or the session's guest. The
// guest, order, items and first history row are written in one transaction.
func (s *OrderService) Create(ctx context.Context, actor policy.Actor, in CreateOrderInput) (*OrderView, error) {
	if !actor.IsAuthenticated() && actor.SessionKey == "" {
		return nil, apperrors.Authentication("a session or login is required to place an order")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	var orderID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, subtotal, err := s.priceLines(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		orders := s.orderRepo.WithTx(tx)
		totals := calc.OrderTotals(subtotal)
		order := &models.Order{
			Status:             models.OrderStatusPending,
			BillingFirstName:   strings.TrimSpace(in.Billing.FirstName),
			BillingLastName:    strings.TrimSpace(in.Billing.LastName),
			BillingEmail:       models.NormalizeEmail(in.Billing.Email),
			BillingPhone:       strings.TrimSpace(in.Billing.Phone),
			BillingAddress:     strings.TrimSpace(in.Billing.Address),
			BillingCity:        strings.TrimSpace(in.Billing.City),
			BillingDepartment:  strings.TrimSpace(in.Billing.Department),
			BillingPostalCode:  strings.TrimSpace(in.Billing.PostalCode),
			ShippingFirstName:  strings.TrimSpace(in.Shipping.FirstName),
			ShippingLastName:   strings.TrimSpace(in.Shipping.LastName),
			ShippingAddress:    strings.TrimSpace(in.Shipping.Address),
			ShippingCity:       strings.TrimSpace(in.Shipping.City),
			ShippingDepartment: strings.TrimSpace(in.Shipping.Department),
			ShippingPostalCode: strings.TrimSpace(in.Shipping.PostalCode),
			Subtotal:           totals.Subtotal,
			ShippingCost:       totals.ShippingCost,
			Tax:                totals.Tax,
			Total:              totals.Total,
		}

		if actor.IsAuthenticated() {
			order.UserID = actorID(actor)
		} else {
			guest, err := s.guests.Resolve(ctx, tx, actor.SessionKey, GuestContact{
				Email:     in.Billing.Email,
				FirstName: order.BillingFirstName,
				LastName:  order.BillingLastName,
				Phone:     order.BillingPhone,
			})
			if err != nil {
				return err
			}
			order.GuestUserID = &guest.ID
		}

		admin, err := s.assignee.Resolve(ctx, tx)
		if err != nil {
			return apperrors.Unexpected("could not resolve default assignee", err)
		}
		if admin != nil {
			order.AssignedAdminID = &admin.ID
		}

		if order.OrderNumber, err = s.newOrderNumber(ctx, orders); err != nil {
			return err
		}
		if err := orders.Create(ctx, order); err != nil {
			return apperrors.Unexpected("could not create order", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.orderItemRepo.WithTx(tx).BulkCreate(ctx, items); err != nil {
			return apperrors.Unexpected("could not create order", err)
		}
		if err := s.historyRepo.WithTx(tx).Append(ctx, &models.OrderStatusHistory{
			OrderID:     order.ID,
			Status:      models.OrderStatusPending,
			ChangedByID: actorID(actor),
			Notes:       "Order placed",
		}); err != nil {
			return apperrors.Unexpected("could not create order", err)
		}

		if in.ClearCart {
			if err := s.carts.ClearForActor(ctx, tx, actor); err != nil {
				return err
			}
		}

		if admin == nil {
			log.Printf("OrderService.Create: no active super admin, order %s left unassigned", order.OrderNumber)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, apperrors.Unexpected("could not load order", err)
	}
	log.Printf("OrderService.Create: order %s placed", order.OrderNumber)
	return s.View(order), nil
}

// List scopes the listing by role: super admins see everything, admins their
// assigned orders, customers and guests their own.
func (s *OrderService) List(ctx context.Context, actor policy.Actor, in ListOrdersInput) ([]*OrderView, int64, error) {
	if in.Status != "" && !models.IsValidOrderStatus(in.Status) {
		return nil, 0, apperrors.ValidationField("status", "unknown status")
	}
	filter := repositories.OrderFilter{Status: in.Status, Page: in.Page, PageSize: in.PageSize}

	switch {
	case policy.CanPerform(actor, policy.ListAllOrders, policy.Resource{}):
		filter.AssignedAdminID = in.AssignedAdminID
	case actor.IsStaff():
		filter.AssignedAdminID = actor.UserID
	case actor.IsAuthenticated():
		filter.UserID = actor.UserID
	case actor.SessionKey != "":
		guest, err := s.guests.FindBySession(ctx, actor.SessionKey)
		if err != nil {
			return nil, 0, err
		}
		if guest == nil {
			return []*OrderView{}, 0, nil
		}
		filter.GuestUserID = guest.ID
	default:
		return nil, 0, apperrors.Authentication("a session or login is required")
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Unexpected("could not list orders", err)
	}
	views := make([]*OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, s.View(&orders[i]))
	}
	return views, total, nil
}

// Get hides orders outside the actor's visibility as not found.
func (s *OrderService) Get(ctx context.Context, actor policy.Actor, id string) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load order", err)
	}
	if order == nil || !policy.CanPerform(actor, policy.ViewOrder, policy.OrderResource(order)) {
		return nil, apperrors.NotFound("order not found")
	}
	return s.View(order), nil
}

func (s *OrderService) AdminDetail(ctx context.Context, actor policy.Actor, id string) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Authorization("staff access required")
	}
	order, err := s.orderRepo.GetByIDWithHistory(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load order", err)
	}
	if order == nil || !policy.CanPerform(actor, policy.ViewOrderAdmin, policy.OrderResource(order)) {
		return nil, apperrors.NotFound("order not found")
	}
	return s.View(order), nil
}

// lockForStaff loads the order FOR UPDATE and checks action against it.
func (s *OrderService) lockForStaff(ctx context.Context, tx *gorm.DB, actor policy.Actor, id string, action policy.Action) (*models.Order, error) {
	order, err := s.orderRepo.WithTx(tx).LockByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unexpected("could not load order", err)
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}
	if !policy.CanPerform(actor, action, policy.OrderResource(order)) {
		return nil, apperrors.Authorization("this order is not assigned to you")
	}
	return order, nil
}

func (s *OrderService) detail(ctx context.Context, id string) (*OrderView, error) {
	order, err := s.orderRepo.GetByIDWithHistory(ctx, id)
	if err != nil || order == nil {
		return nil, apperrors.Unexpected("could not load order", err)
	}
	return s.View(order), nil
}

// UpdateStatus writes the new status and appends one history row atomically.
func (s *OrderService) UpdateStatus(ctx context.Context, actor policy.Actor, id string, in UpdateStatusInput) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Authorization("staff access required")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if !models.IsValidOrderStatus(in.Status) {
		return nil, apperrors.ValidationField("status", "must be one of: "+strings.Join(models.OrderStatuses, ", "))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockForStaff(ctx, tx, actor, id, policy.UpdateOrderStatus)
		if err != nil {
			return err
		}
		fields := map[string]interface{}{"status": in.Status}
		if in.TrackingNumber != nil {
			fields["tracking_number"] = strings.TrimSpace(*in.TrackingNumber)
		}
		if in.ShippingCompany != nil {
			fields["shipping_company"] = strings.TrimSpace(*in.ShippingCompany)
		}
		if err := s.orderRepo.WithTx(tx).UpdateFields(ctx, order.ID, fields); err != nil {
			return apperrors.Unexpected("could not update order", err)
		}
		if err := s.historyRepo.WithTx(tx).Append(ctx, &models.OrderStatusHistory{
			OrderID:     order.ID,
			Status:      in.Status,
			ChangedByID: actorID(actor),
			Notes:       in.Notes,
		}); err != nil {
			return apperrors.Unexpected("could not update order", err)
		}
		log.Printf("OrderService.UpdateStatus: order %s %s -> %s by %s", order.OrderNumber, order.Status, in.Status, actor.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// Assign hands the order to another admin. It does not add a history row.
func (s *OrderService) Assign(ctx context.Context, actor policy.Actor, id string, in AssignOrderInput) (*OrderView, error) {
	if !policy.CanPerform(actor, policy.AssignOrder, policy.Resource{}) {
		return nil, apperrors.Authorization("super admin access required")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, err := s.userRepo.WithTx(tx).FindByID(ctx, in.AdminID)
		if err != nil {
			return apperrors.Unexpected("could not load admin", err)
		}
		if target == nil {
			return apperrors.NotFound("admin not found")
		}
		if !target.IsStaff() || !target.IsActive {
			return apperrors.Authorization("orders can only be assigned to an active admin")
		}

		order, err := s.lockForStaff(ctx, tx, actor, id, policy.AssignOrder)
		if err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).UpdateFields(ctx, order.ID, map[string]interface{}{"assigned_admin_id": target.ID}); err != nil {
			return apperrors.Unexpected("could not assign order", err)
		}
		log.Printf("OrderService.Assign: order %s assigned to %s by %s", order.OrderNumber, target.ID, actor.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// Reject hands the order back to the default super admin and records the
// reason without changing the status.
func (s *OrderService) Reject(ctx context.Context, actor policy.Actor, id string, in RejectOrderInput) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Authorization("staff access required")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockForStaff(ctx, tx, actor, id, policy.RejectOrder)
		if err != nil {
			return err
		}
		target, err := s.assignee.Resolve(ctx, tx)
		if err != nil {
			return apperrors.Unexpected("could not resolve default assignee", err)
		}
		if target == nil {
			return apperrors.Conflict("no active super admin is available to take over the order")
		}

		if err := s.orderRepo.WithTx(tx).UpdateFields(ctx, order.ID, map[string]interface{}{"assigned_admin_id": target.ID}); err != nil {
			return apperrors.Unexpected("could not reject order", err)
		}
		if err := s.historyRepo.WithTx(tx).Append(ctx, &models.OrderStatusHistory{
			OrderID:     order.ID,
			Status:      order.Status,
			ChangedByID: actorID(actor),
			Notes:       "Rejected: " + strings.TrimSpace(in.Reason),
		}); err != nil {
			return apperrors.Unexpected("could not reject order", err)
		}
		log.Printf("OrderService.Reject: order %s rejected by %s, reassigned to %s", order.OrderNumber, actor.UserID, target.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// UpdatePreparation toggles per-item preparation flags. Ids that are not items
// of the order are skipped. Notes, when given, add a history row at the current status.
func (s *OrderService) UpdatePreparation(ctx context.Context, actor policy.Actor, id string, in PreparationInput) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Authorization("staff access required")
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockForStaff(ctx, tx, actor, id, policy.PrepareOrder)
		if err != nil {
			return err
		}
		items := s.orderItemRepo.WithTx(tx)
		for itemID, prepared := range in.Items {
			found, err := items.SetPrepared(ctx, order.ID, itemID, prepared)
			if err != nil {
				return apperrors.Unexpected("could not update preparation", err)
			}
			if !found {
				log.Printf("OrderService.UpdatePreparation: item %s is not part of order %s, skipped", itemID, order.OrderNumber)
			}
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			if err := s.historyRepo.WithTx(tx).Append(ctx, &models.OrderStatusHistory{
				OrderID:     order.ID,
				Status:      order.Status,
				ChangedByID: actorID(actor),
				Notes:       notes,
			}); err != nil {
				return apperrors.Unexpected("could not update preparation", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// Lookup finds an order by number and billing email, both case-insensitive.
func (s *OrderService) Lookup(ctx context.Context, in LookupOrderInput) (*OrderView, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	in.Email = strings.TrimSpace(in.Email)
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByNumberAndEmail(ctx, in.OrderNumber, in.Email)
	if err != nil {
		return nil, apperrors.Unexpected("could not look up order", err)
	}
	if order == nil {
		return nil, apperrors.NotFound("no order matches that number and email")
	}
	return s.View(order), nil
}
