package newsletter

import (
	"errors"
	"fmt"
	"net/http"

	"arvista/config"
	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/inbox"
	"arvista/internal/infra/mailer"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// POST /newsletter
func Subscribe(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, reactivated, err := inbox.Subscribe(database.DB, input.Email)
	switch {
	case errors.Is(err, inbox.ErrAlreadySubscribed), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already subscribed"})
		return
	case err != nil:
		common.InternalError(c, "Failed to subscribe", err)
		return
	}

	status := http.StatusCreated
	message := "Subscribed"
	if reactivated {
		status = http.StatusOK
		message = "Welcome back, your subscription is active again"
	}
	sendWelcome(sub)
	c.JSON(status, gin.H{"message": message, "email": sub.Email})
}

// sendWelcome mails the subscriber their unsubscribe link. The token is never
// returned over the API, so this mail is the only way to reach it.
func sendWelcome(sub *inbox.NewsletterSubscription) {
	link := fmt.Sprintf("%s/newsletter/unsubscribe?token=%s", config.APP_URL, sub.UnsubscribeToken)
	body := "Thanks for subscribing to the Arvista newsletter.\n\n" +
		"You can unsubscribe at any time:\n" + link
	to, id := sub.Email, sub.ID
	sender := mailer.Default

	go func() {
		if err := sender.Send(to, "Welcome to the Arvista newsletter", body); err != nil {
			log.Error().Err(err).Uint("subscription_id", id).Msg("newsletter welcome mail failed")
		}
	}()
}

// GET /newsletter/unsubscribe?token=
func Unsubscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	sub, err := inbox.Unsubscribe(database.DB, token)
	if errors.Is(err, inbox.ErrUnknownToken) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid unsubscribe link"})
		return
	}
	if err != nil {
		common.InternalError(c, "Failed to unsubscribe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed", "email": sub.Email})
}
