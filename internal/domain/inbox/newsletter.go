package inbox

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionActive       = "active"
	SubscriptionUnsubscribed = "unsubscribed"
)

var (
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	ErrUnknownToken      = errors.New("unknown unsubscribe token")
)

type NewsletterSubscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"not null;uniqueIndex" json:"email"`
	Status           string     `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	UnsubscribeToken string     `gorm:"not null;uniqueIndex" json:"-"`
	SubscribedAt     time.Time  `json:"subscribed_at"`
	UnsubscribedAt   *time.Time `json:"unsubscribed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidSubscriptionStatus(s string) bool {
	return s == SubscriptionActive || s == SubscriptionUnsubscribed
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Subscribe creates or re-activates a subscription. reactivated is true when
// an unsubscribed row was switched back on.
func Subscribe(db *gorm.DB, email string) (sub *NewsletterSubscription, reactivated bool, err error) {
	email = NormalizeEmail(email)
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing NewsletterSubscription
		e := tx.Where("email = ?", email).First(&existing).Error
		if errors.Is(e, gorm.ErrRecordNotFound) {
			s := NewsletterSubscription{
				Email:            email,
				Status:           SubscriptionActive,
				UnsubscribeToken: uuid.NewString(),
				SubscribedAt:     time.Now(),
			}
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
			sub = &s
			return nil
		}
		if e != nil {
			return e
		}
		if existing.Status == SubscriptionActive {
			return ErrAlreadySubscribed
		}

		now := time.Now()
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"status":          SubscriptionActive,
			"subscribed_at":   now,
			"unsubscribed_at": nil,
		}).Error; err != nil {
			return err
		}
		existing.Status = SubscriptionActive
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		sub = &existing
		reactivated = true
		return nil
	})
	return sub, reactivated, err
}

// Unsubscribe deactivates the subscription owning token. Repeating it is harmless.
func Unsubscribe(db *gorm.DB, token string) (*NewsletterSubscription, error) {
	var s NewsletterSubscription
	if err := db.Where("unsubscribe_token = ?", token).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownToken
		}
		return nil, err
	}
	if s.Status == SubscriptionUnsubscribed {
		return &s, nil
	}
	now := time.Now()
	if err := db.Model(&s).Updates(map[string]interface{}{
		"status":          SubscriptionUnsubscribed,
		"unsubscribed_at": now,
	}).Error; err != nil {
		return nil, err
	}
	s.Status = SubscriptionUnsubscribed
	s.UnsubscribedAt = &now
	return &s, nil
}
