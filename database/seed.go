package database

import (
	"errors"

	"arvista/internal/domain/catalog"
	"arvista/internal/domain/users"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultCategories = []string{
	"Painting",
	"Sculpture",
	"Photography",
	"Drawing",
	"Printmaking",
	"Digital Art",
	"Mixed Media",
}

// Seed inserts the default categories and, when credentials are given, an
// admin account. Running it twice changes nothing.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range defaultCategories {
			c := catalog.Category{Name: name, Slug: catalog.MakeSlug(name, "category")}
			if err := tx.Where(catalog.Category{Slug: c.Slug}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
		}

		if adminEmail == "" || adminPassword == "" {
			return nil
		}

		var existing users.User
		err := tx.Where("email = ?", adminEmail).First(&existing).Error
		if err == nil {
			if existing.IsAdmin() {
				return nil
			}
			return tx.Model(&existing).Update("role", users.RoleAdmin).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		h := string(hashed)
		return tx.Create(&users.User{
			Name:         "Administrator",
			Email:        adminEmail,
			Password:     &h,
			AuthProvider: users.ProviderLocal,
			Role:         users.RoleAdmin,
		}).Error
	})
}
