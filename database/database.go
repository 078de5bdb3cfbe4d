package database

import (
	"arvista/config"
	"arvista/internal/domain/cart"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/engagement"
	"arvista/internal/domain/inbox"
	"arvista/internal/domain/media"
	"arvista/internal/domain/orders"
	"arvista/internal/domain/users"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB() {
	db, err := gorm.Open(postgres.Open(config.DB_URL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	DB = db
	log.Info().Msg("Connected to database")
}

// Models lists every persisted type, in dependency order.
func Models() []interface{} {
	return []interface{}{
		// accounts
		&users.User{},
		&users.PasswordResetToken{},

		// catalog
		&catalog.Category{},
		&catalog.Collection{},
		&catalog.Tag{},
		&catalog.Artwork{},
		&media.Image{},

		// shop
		&cart.Cart{},
		&cart.CartItem{},
		&orders.Order{},
		&orders.OrderItem{},
		&orders.Payment{},

		// engagement
		&engagement.Favorite{},
		&engagement.Review{},

		// inbox
		&inbox.ContactMessage{},
		&inbox.NewsletterSubscription{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
