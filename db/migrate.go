package db

import (
	"fmt"

	"github.com/meinhoongagan/clinic-app/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Patient{},
		&models.Doctor{},
		&models.Appointment{},
		&models.Holiday{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedRoles creates the ADMIN and USER_PATIENT roles if they don't exist.
func SeedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "Administrator managing doctors, holidays and users"},
		{Name: models.RolePatient, Description: "Patient who can book appointments"},
	}

	for _, role := range roles {
		var existing models.Role
		if db.Where("name = ?", role.Name).First(&existing).RowsAffected > 0 {
			continue
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("create role %s: %w", role.Name, err)
		}
	}
	return nil
}
