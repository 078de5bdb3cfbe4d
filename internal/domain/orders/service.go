package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnavailable       = errors.New("artwork is no longer available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status change not allowed")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
	ErrNotPayable        = errors.New("order is not awaiting payment")
	ErrIdempotencyReplay = errors.New("order already placed for this idempotency key")
)

type PlaceInput struct {
	ShippingAddress
	Notes          string
	IdempotencyKey string
}

// Place converts the user's cart into an order in a single transaction:
// stock is decremented conditionally so concurrent checkouts cannot oversell,
// and the cart is emptied only if the order row was written.
//
// When IdempotencyKey matches an earlier order of the same user, that order is
// returned together with ErrIdempotencyReplay.
func Place(db *gorm.DB, userID uint, in PlaceInput, pricing Pricing) (*Order, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := findByIdempotencyKey(db, userID, key)
		if err == nil {
			return existing, ErrIdempotencyReplay
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var order Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		err := tx.Where("user_id = ?", userID).
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
			Preload("Items.Artwork").
			First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}

		items := make([]OrderItem, 0, len(c.Items))
		var subtotal int64
		for _, it := range c.Items {
			a := it.Artwork
			if a == nil || a.Status != catalog.StatusAvailable {
				return fmt.Errorf("%w: %s", ErrUnavailable, titleOf(a, it.ArtworkID))
			}

			res := tx.Model(&catalog.Artwork{}).
				Where("id = ? AND status = ? AND stock >= ?", a.ID, catalog.StatusAvailable, it.Quantity).
				Update("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, a.Title)
			}
			if err := tx.Model(&catalog.Artwork{}).
				Where("id = ? AND stock <= 0", a.ID).
				Update("status", catalog.StatusSold).Error; err != nil {
				return err
			}

			line := a.PriceCents * int64(it.Quantity)
			subtotal += line
			items = append(items, OrderItem{
				ArtworkID:      a.ID,
				Title:          a.Title,
				UnitPriceCents: a.PriceCents,
				Quantity:       it.Quantity,
				LineTotalCents: line,
			})
		}

		shipping := pricing.ShippingFor(subtotal)
		order = Order{
			UserID:          userID,
			Status:          StatusPending,
			Currency:        pricing.Currency,
			SubtotalCents:   subtotal,
			ShippingCents:   shipping,
			TotalCents:      subtotal + shipping,
			ShippingAddress: in.ShippingAddress,
			Notes:           in.Notes,
			Items:           items,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error
	})
	if key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request with the same key won the insert.
		existing, ferr := findByIdempotencyKey(db, userID, key)
		if ferr == nil {
			return existing, ErrIdempotencyReplay
		}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func findByIdempotencyKey(db *gorm.DB, userID uint, key string) (*Order, error) {
	var o Order
	err := db.Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func titleOf(a *catalog.Artwork, fallback string) string {
	if a != nil {
		return a.Title
	}
	return fallback
}

// Find loads an order with items. A non-nil userID restricts the lookup to
// that user's orders.
func Find(db *gorm.DB, orderID string, userID *uint) (*Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, ErrNotFound
	}
	q := db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Payments").
		Where("id = ?", orderID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var o Order
	if err := q.First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Cancel cancels an order and puts its quantities back on the shelf.
// A non-nil userID restricts the lookup to that user's orders.
func Cancel(db *gorm.DB, orderID string, userID *uint) (*Order, error) {
	var out *Order
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := Find(tx, orderID, userID)
		if err != nil {
			return err
		}
		if !Cancellable(o.Status) {
			return ErrNotCancellable
		}

		// The status guard makes a concurrent cancel lose here instead of
		// releasing the same stock twice.
		now := time.Now()
		res := tx.Model(&Order{}).Where("id = ? AND status = ?", o.ID, o.Status).Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotCancellable
		}
		if err := releaseStock(tx, o.Items); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.CancelledAt = &now
		out = o
		return nil
	})
	return out, err
}

func releaseStock(tx *gorm.DB, items []OrderItem) error {
	for _, it := range items {
		if err := tx.Model(&catalog.Artwork{}).
			Where("id = ?", it.ArtworkID).
			Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
			return err
		}
		if err := tx.Model(&catalog.Artwork{}).
			Where("id = ? AND status = ? AND stock > 0", it.ArtworkID, catalog.StatusSold).
			Update("status", catalog.StatusAvailable).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves an order along its lifecycle (admin back-office).
func UpdateStatus(db *gorm.DB, orderID, to string) (*Order, error) {
	if !ValidStatus(to) {
		return nil, ErrInvalidStatus
	}
	if to == StatusCancelled {
		o, err := Cancel(db, orderID, nil)
		if errors.Is(err, ErrNotCancellable) {
			return nil, ErrInvalidTransition
		}
		return o, err
	}

	var out *Order
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := Find(tx, orderID, nil)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return ErrInvalidTransition
		}
		updates := map[string]interface{}{"status": to}
		if to == StatusPaid && o.PaidAt == nil {
			now := time.Now()
			updates["paid_at"] = now
			o.PaidAt = &now
		}
		res := tx.Model(&Order{}).Where("id = ? AND status = ?", o.ID, o.Status).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		o.Status = to
		out = o
		return nil
	})
	return out, err
}

// AttachCheckoutSession remembers the Stripe session created for a pending order.
func AttachCheckoutSession(db *gorm.DB, orderID, sessionID string) error {
	return db.Model(&Order{}).
		Where("id = ? AND status = ?", orderID, StatusPending).
		Update("stripe_session_id", sessionID).Error
}

type PaymentResult struct {
	OrderID         string
	SessionID       string
	PaymentIntentID string
	AmountCents     int64
	Currency        string
	ReceiptURL      string
}

// MarkPaid applies a completed checkout session. Replays of the same session
// are no-ops reported with applied == false, so webhook retries are safe.
func MarkPaid(db *gorm.DB, res PaymentResult) (order *Order, applied bool, err error) {
	if res.SessionID == "" {
		return nil, false, errors.New("missing checkout session id")
	}

	var out *Order
	err = db.Transaction(func(tx *gorm.DB) error {
		var o Order
		err := tx.Where("stripe_session_id = ?", res.SessionID).First(&o).Error
		if _, perr := uuid.Parse(res.OrderID); errors.Is(err, gorm.ErrRecordNotFound) && perr == nil {
			err = tx.Where("id = ?", res.OrderID).First(&o).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out = &o

		var seen int64
		if err := tx.Model(&Payment{}).Where("stripe_session_id = ?", res.SessionID).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return nil
		}

		p := Payment{
			OrderID:         o.ID,
			StripeSessionID: res.SessionID,
			AmountCents:     res.AmountCents,
			Currency:        res.Currency,
			Status:          "paid",
		}
		if res.PaymentIntentID != "" {
			p.StripePaymentIntentID = &res.PaymentIntentID
		}
		if res.ReceiptURL != "" {
			p.ReceiptURL = &res.ReceiptURL
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		applied = true

		// Paid after expiry or cancellation: keep the money trail, leave the
		// status to an admin.
		if o.Status != StatusPending {
			return nil
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":            StatusPaid,
			"paid_at":           now,
			"stripe_session_id": res.SessionID,
		}
		if res.PaymentIntentID != "" {
			updates["stripe_payment_intent_id"] = res.PaymentIntentID
		}
		res := tx.Model(&Order{}).Where("id = ? AND status = ?", o.ID, StatusPending).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.First(&o, "id = ?", o.ID).Error
		}
		o.Status = StatusPaid
		o.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, applied, nil
}

// ExpireStale cancels pending orders created before cutoff and releases their
// stock. It returns how many orders were cancelled.
func ExpireStale(db *gorm.DB, cutoff time.Time) (int, error) {
	var ids []string
	if err := db.Model(&Order{}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if _, err := Cancel(db, id, nil); err != nil {
			if errors.Is(err, ErrNotCancellable) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}
