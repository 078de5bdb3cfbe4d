package orders

import (
	"strings"
	"time"

	"arvista/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

type Order struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	Number string      `gorm:"not null;uniqueIndex" json:"number"`
	UserID uint        `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency,priority:1" json:"user_id"`
	User   *users.User `json:"user,omitempty"`
	Status string      `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	Currency      string `gorm:"type:varchar(3);not null" json:"currency"`
	SubtotalCents int64  `gorm:"not null" json:"subtotal_cents"`
	ShippingCents int64  `gorm:"not null" json:"shipping_cents"`
	TotalCents    int64  `gorm:"not null" json:"total_cents"`

	ShippingAddress

	Notes string `json:"notes,omitempty"`

	IdempotencyKey *string `gorm:"uniqueIndex:idx_orders_user_idempotency,priority:2" json:"-"`

	StripeSessionID       *string `gorm:"index" json:"-"`
	StripePaymentIntentID *string `json:"-"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ShippingAddress struct {
	ShippingName    string `json:"shipping_name"`
	ShippingLine1   string `json:"shipping_line1"`
	ShippingLine2   string `json:"shipping_line2,omitempty"`
	ShippingCity    string `json:"shipping_city"`
	ShippingPostal  string `json:"shipping_postal"`
	ShippingCountry string `gorm:"type:varchar(2)" json:"shipping_country"`
	Phone           string `json:"phone,omitempty"`
}

// OrderItem snapshots the artwork at purchase time so later catalog edits do
// not rewrite order history.
type OrderItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrderID        string `gorm:"type:uuid;not null;index" json:"-"`
	ArtworkID      string `gorm:"type:uuid;not null;index" json:"artwork_id"`
	Title          string `gorm:"not null" json:"title"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	Quantity       int    `gorm:"not null" json:"quantity"`
	LineTotalCents int64  `gorm:"not null" json:"line_total_cents"`
}

type Payment struct {
	ID                    uint    `gorm:"primaryKey" json:"id"`
	OrderID               string  `gorm:"type:uuid;not null;index" json:"order_id"`
	StripeSessionID       string  `gorm:"uniqueIndex" json:"-"`
	StripePaymentIntentID *string `json:"-"`
	AmountCents           int64   `json:"amount_cents"`
	Currency              string  `json:"currency"`
	Status                string  `json:"status"`
	ReceiptURL            *string `json:"receipt_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Number == "" {
		o.Number = NewOrderNumber()
	}
	return nil
}

// NewOrderNumber returns a short human-facing reference like ARV-1A2B3C4D.
func NewOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ARV-" + strings.ToUpper(raw[:8])
}
