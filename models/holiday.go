package models

import (
	"time"
)

// Holiday is a designated day the clinic is closed.
type Holiday struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Date      string    `json:"date" gorm:"type:varchar(10);uniqueIndex"` // Format "YYYY-MM-DD"
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
