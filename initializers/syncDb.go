package initializers

import (
	"errors"
	"fmt"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SyncDatabase migrates the schema, seeds the menus and bootstraps the
// configured admin account.
func SyncDatabase(db *gorm.DB, cfg *Config, log *logrus.Logger) error {
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Menu{},
		&models.Dish{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.CartItem{},
		&models.NotificationJob{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := seedMenus(db); err != nil {
		return err
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := bootstrapAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		log.WithField("email", cfg.AdminEmail).Info("Admin account ensured")
	}

	log.Info("Database synced successfully.")
	return nil
}

func seedMenus(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Menu{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count menus: %w", err)
	}
	if count > 0 {
		return nil
	}

	menus := make([]models.Menu, len(models.DefaultMenus))
	copy(menus, models.DefaultMenus)
	if err := db.Create(&menus).Error; err != nil {
		return fmt.Errorf("seed menus: %w", err)
	}
	return nil
}

func bootstrapAdmin(db *gorm.DB, email, password string) error {
	var customer models.Customer
	err := db.Where("email = ?", email).First(&customer).Error
	if err == nil {
		if customer.IsAdmin {
			return nil
		}
		return db.Model(&customer).Update("is_admin", true).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.Customer{
		Name:     "Administrator",
		Email:    email,
		Phone:    "0000000000",
		Password: string(hash),
		IsAdmin:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
