// Package store holds the persistence collaborators of the booking flow.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/clinic-app/availability"
	"github.com/meinhoongagan/clinic-app/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

// ConflictError reports which unique field a write collided on.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already taken", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type Users interface {
	// CreatePatient stores a user together with its patient profile.
	CreatePatient(ctx context.Context, user *models.User, patient *models.Patient) error
	CreateAdmin(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type Doctors interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	GetByID(ctx context.Context, id uint) (*models.Doctor, error)
	List(ctx context.Context) ([]models.Doctor, error)
	SetPhoto(ctx context.Context, id uint, url string) error
}

type Appointments interface {
	// OccupiedTimes returns the booked "HH:MM" times of a doctor on a "YYYY-MM-DD" date.
	OccupiedTimes(ctx context.Context, doctorID uint, date string) ([]string, error)
	// Create fails with *ConflictError when the doctor already has the slot.
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]models.Appointment, error)
}

type Holidays interface {
	Create(ctx context.Context, holiday *models.Holiday) error
	InMonth(ctx context.Context, year int, month time.Month) ([]models.Holiday, error)
	List(ctx context.Context) ([]models.Holiday, error)
	Delete(ctx context.Context, id uint) error
}

// HolidayDates converts stored holidays into dates in loc, skipping malformed rows.
func HolidayDates(holidays []models.Holiday, loc *time.Location) []time.Time {
	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		d, err := availability.ParseDate(h.Date, loc)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}
