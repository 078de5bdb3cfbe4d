package contact

import (
	"fmt"
	"net/http"
	"strings"

	"arvista/config"
	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/inbox"
	"arvista/internal/infra/mailer"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// POST /contact
func Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := inbox.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   inbox.NormalizeEmail(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  inbox.ContactNew,
	}
	if msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	if err := database.DB.Create(&msg).Error; err != nil {
		common.InternalError(c, "Failed to save message", err)
		return
	}

	notifyAdmin(zerolog.Ctx(c.Request.Context()), msg)

	c.JSON(http.StatusCreated, gin.H{"message": "Thank you, we will get back to you soon.", "id": msg.ID})
}

// notifyAdmin mails ADMIN_EMAIL in the background; failures are only logged.
func notifyAdmin(log *zerolog.Logger, msg inbox.ContactMessage) {
	if config.ADMIN_EMAIL == "" {
		return
	}
	subject := "New contact message"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", msg.Name, msg.Email, msg.Message)
	sender := mailer.Default

	go func() {
		if err := sender.Send(config.ADMIN_EMAIL, subject, body); err != nil {
			log.Error().Err(err).Uint("contact_id", msg.ID).Msg("admin notification failed")
		}
	}()
}
