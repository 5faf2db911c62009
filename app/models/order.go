package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusRejected  = "rejected"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRejected,
}

func IsValidOrderStatus(status string) bool {
	return contains(OrderStatuses, status)
}

// Order is owned by exactly one of UserID or GuestUserID. Addresses and
// amounts are copied at creation and never recomputed.
type Order struct {
	ID              string     `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderNumber     string     `gorm:"size:20;not null;uniqueIndex" json:"order_number"`
	UserID          *string    `gorm:"size:36;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"-"`
	GuestUserID     *string    `gorm:"size:36;index" json:"guest_user_id"`
	GuestUser       *GuestUser `gorm:"foreignKey:GuestUserID" json:"-"`
	Status          string     `gorm:"size:20;not null;index" json:"status"`
	TrackingNumber  string     `gorm:"size:50" json:"tracking_number"`
	ShippingCompany string     `gorm:"size:100" json:"shipping_company"`
	AssignedAdminID *string    `gorm:"size:36;index" json:"assigned_admin_id"`
	AssignedAdmin   *User      `gorm:"foreignKey:AssignedAdminID" json:"assigned_admin,omitempty"`

	BillingFirstName  string `gorm:"size:30;not null" json:"billing_first_name"`
	BillingLastName   string `gorm:"size:30;not null" json:"billing_last_name"`
	BillingEmail      string `gorm:"size:100;not null;index" json:"billing_email"`
	BillingPhone      string `gorm:"size:20;not null" json:"billing_phone"`
	BillingAddress    string `gorm:"type:text;not null" json:"billing_address"`
	BillingCity       string `gorm:"size:50;not null" json:"billing_city"`
	BillingDepartment string `gorm:"size:50;not null" json:"billing_department"`
	BillingPostalCode string `gorm:"size:10;not null" json:"billing_postal_code"`

	ShippingFirstName  string `gorm:"size:30;not null" json:"shipping_first_name"`
	ShippingLastName   string `gorm:"size:30;not null" json:"shipping_last_name"`
	ShippingAddress    string `gorm:"type:text;not null" json:"shipping_address"`
	ShippingCity       string `gorm:"size:50;not null" json:"shipping_city"`
	ShippingDepartment string `gorm:"size:50;not null" json:"shipping_department"`
	ShippingPostalCode string `gorm:"size:10;not null" json:"shipping_postal_code"`

	Subtotal     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"shipping_cost"`
	Tax          decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"tax"`
	Total        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`

	PaymentToken string `gorm:"size:255" json:"-"`
	PaymentURL   string `gorm:"type:text" json:"payment_url,omitempty"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return
}

func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.BillingFirstName + " " + o.BillingLastName)
}

func (o *Order) IsAssignedTo(userID string) bool {
	return o.AssignedAdminID != nil && userID != "" && *o.AssignedAdminID == userID
}

// NewOrderNumber returns eight upper-case hex characters.
func NewOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
