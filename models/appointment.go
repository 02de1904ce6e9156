package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Appointment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PatientID uint      `json:"patient_id" gorm:"index"`
	Patient   *Patient  `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DoctorID  uint      `json:"doctor_id" gorm:"uniqueIndex:idx_doctor_slot,priority:1"`
	Doctor    *Doctor   `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Date      string    `json:"date" gorm:"type:varchar(10);uniqueIndex:idx_doctor_slot,priority:2;index"` // Format "YYYY-MM-DD"
	Time      string    `json:"time" gorm:"type:varchar(5);uniqueIndex:idx_doctor_slot,priority:3"`        // Format "HH:MM" in 24h
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.PatientID == 0 || a.DoctorID == 0 {
		return fmt.Errorf("appointment needs both a patient and a doctor")
	}
	if a.Date == "" || a.Time == "" {
		return fmt.Errorf("appointment needs a date and a time")
	}
	return nil
}
