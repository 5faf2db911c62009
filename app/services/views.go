package services

import (
	"time"

	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/utils/format"
	"github.com/shopspring/decimal"
)

type ProductSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	MainImage string          `json:"main_image,omitempty"`
	IsActive  bool            `json:"is_active"`
}

type VariantSummary struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
}

type CartItemView struct {
	ID        string          `json:"id"`
	Product   ProductSummary  `json:"product"`
	Variant   *VariantSummary `json:"variant"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	ID                string          `json:"id"`
	Items             []CartItemView  `json:"items"`
	TotalItems        int             `json:"total_items"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalPriceDisplay string          `json:"total_price_display"`
}

func newCartView(cart *models.Cart, money *format.MoneyFormatter) *CartView {
	view := &CartView{
		ID:                cart.ID,
		Items:             make([]CartItemView, 0, len(cart.Items)),
		TotalItems:        cart.TotalItems(),
		TotalPrice:        cart.TotalPrice(),
		TotalPriceDisplay: money.Format(cart.TotalPrice()),
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		iv := CartItemView{
			ID:        item.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice(),
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			iv.Product = summarizeProduct(item.Product)
		}
		if item.Variant != nil {
			iv.Variant = &VariantSummary{ID: item.Variant.ID, Size: item.Variant.Size, Color: item.Variant.Color}
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

func summarizeProduct(p *models.Product) ProductSummary {
	p.FillDerived()
	summary := ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, IsActive: p.IsActive}
	if p.MainImage != nil {
		summary.MainImage = p.MainImage.ImageURL
	}
	return summary
}

type OrderItemView struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	VariantID       *string         `json:"variant_id"`
	ProductName     string          `json:"product_name"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	PriceDisplay    string          `json:"price_display"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
	IsPrepared      bool            `json:"is_prepared"`
}

type AddressView struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Department string `json:"department"`
	PostalCode string `json:"postal_code"`
}

type StaffSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type StatusHistoryView struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	ChangedBy *StaffSummary `json:"changed_by"`
	Notes     string        `json:"notes"`
	CreatedAt time.Time     `json:"created_at"`
}

type OrderView struct {
	ID                  string              `json:"id"`
	OrderNumber         string              `json:"order_number"`
	Status              string              `json:"status"`
	CustomerType        string              `json:"customer_type"`
	CustomerName        string              `json:"customer_name"`
	TrackingNumber      string              `json:"tracking_number"`
	ShippingCompany     string              `json:"shipping_company"`
	AssignedAdmin       *StaffSummary       `json:"assigned_admin"`
	Billing             AddressView         `json:"billing"`
	Shipping            AddressView         `json:"shipping"`
	Items               []OrderItemView     `json:"items"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	SubtotalDisplay     string              `json:"subtotal_display"`
	ShippingCost        decimal.Decimal     `json:"shipping_cost"`
	ShippingCostDisplay string              `json:"shipping_cost_display"`
	Tax                 decimal.Decimal     `json:"tax"`
	TaxDisplay          string              `json:"tax_display"`
	Total               decimal.Decimal     `json:"total"`
	TotalDisplay        string              `json:"total_display"`
	PaymentURL          string              `json:"payment_url,omitempty"`
	StatusHistory       []StatusHistoryView `json:"status_history,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func summarizeStaff(u *models.User) *StaffSummary {
	if u == nil {
		return nil
	}
	return &StaffSummary{ID: u.ID, Email: u.Email, FullName: u.FullName(), Role: u.Role}
}

func newOrderView(o *models.Order, money *format.MoneyFormatter) *OrderView {
	customerType := "guest"
	if o.UserID != nil {
		customerType = "registered"
	}
	view := &OrderView{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		CustomerType:    customerType,
		CustomerName:    o.CustomerName(),
		TrackingNumber:  o.TrackingNumber,
		ShippingCompany: o.ShippingCompany,
		AssignedAdmin:   summarizeStaff(o.AssignedAdmin),
		Billing: AddressView{
			FirstName:  o.BillingFirstName,
			LastName:   o.BillingLastName,
			Email:      o.BillingEmail,
			Phone:      o.BillingPhone,
			Address:    o.BillingAddress,
			City:       o.BillingCity,
			Department: o.BillingDepartment,
			PostalCode: o.BillingPostalCode,
		},
		Shipping: AddressView{
			FirstName:  o.ShippingFirstName,
			LastName:   o.ShippingLastName,
			Address:    o.ShippingAddress,
			City:       o.ShippingCity,
			Department: o.ShippingDepartment,
			PostalCode: o.ShippingPostalCode,
		},
		Items:               make([]OrderItemView, 0, len(o.Items)),
		Subtotal:            o.Subtotal,
		SubtotalDisplay:     money.Format(o.Subtotal),
		ShippingCost:        o.ShippingCost,
		ShippingCostDisplay: money.Format(o.ShippingCost),
		Tax:                 o.Tax,
		TaxDisplay:          money.Format(o.Tax),
		Total:               o.Total,
		TotalDisplay:        money.Format(o.Total),
		PaymentURL:          o.PaymentURL,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	for i := range o.Items {
		item := &o.Items[i]
		view.Items = append(view.Items, OrderItemView{
			ID:              item.ID,
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			ProductName:     item.ProductName,
			Size:            item.Size,
			Color:           item.Color,
			Quantity:        item.Quantity,
			Price:           item.Price,
			PriceDisplay:    money.Format(item.Price),
			Subtotal:        item.Subtotal(),
			SubtotalDisplay: money.Format(item.Subtotal()),
			IsPrepared:      item.IsPrepared,
		})
	}
	for i := range o.StatusHistory {
		h := &o.StatusHistory[i]
		view.StatusHistory = append(view.StatusHistory, StatusHistoryView{
			ID:        h.ID,
			Status:    h.Status,
			ChangedBy: summarizeStaff(h.ChangedBy),
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return view
}
