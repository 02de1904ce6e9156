package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/clinic-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps gorm errors onto the store's sentinel errors. The DB must be opened
// with TranslateError for unique violations to surface as gorm.ErrDuplicatedKey.
func translate(err error, field string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Field: field}
	}
	return err
}

func taken(tx *gorm.DB, model interface{}, column, value string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreatePatient(ctx context.Context, user *models.User, patient *models.Patient) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", models.RolePatient).First(&role).Error; err != nil {
			return fmt.Errorf("find role %s: %w", models.RolePatient, err)
		}

		checks := []struct {
			model  interface{}
			column string
			value  string
		}{
			{&models.User{}, "email", user.Email},
			{&models.Patient{}, "phone_number", patient.PhoneNumber},
			{&models.Patient{}, "pesel_number", patient.PeselNumber},
		}
		for _, c := range checks {
			exists, err := taken(tx, c.model, c.column, c.value)
			if err != nil {
				return err
			}
			if exists {
				return &ConflictError{Field: c.column}
			}
		}

		user.RoleID = role.ID
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return translate(err, "email")
		}
		patient.UserID = user.ID
		if err := tx.Create(patient).Error; err != nil {
			return translate(err, "")
		}
		user.Role = role
		user.Patient = patient
		return nil
	})

	// A concurrent registration slipped past the checks; the failed transaction
	// cannot be queried, so find the colliding column afterwards.
	var conflict *ConflictError
	if errors.As(err, &conflict) && conflict.Field == "" {
		conflict.Field = s.patientConflict(ctx, patient)
	}
	return err
}

func (s *UserStore) patientConflict(ctx context.Context, patient *models.Patient) string {
	db := s.db.WithContext(ctx)
	if ok, _ := taken(db, &models.Patient{}, "phone_number", patient.PhoneNumber); ok {
		return "phone_number"
	}
	if ok, _ := taken(db, &models.Patient{}, "pesel_number", patient.PeselNumber); ok {
		return "pesel_number"
	}
	return "account"
}

func (s *UserStore) CreateAdmin(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
			return fmt.Errorf("find role %s: %w", models.RoleAdmin, err)
		}
		user.RoleID = role.ID
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return translate(err, "email")
		}
		user.Role = role
		return nil
	})
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Preload("Patient").First(&user, id).Error
	if err != nil {
		return nil, translate(err, "id")
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Preload("Patient").
		Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, "email")
	}
	return &user, nil
}

func (s *UserStore) SetPassword(ctx context.Context, id uint, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user, its patient profile and that patient's appointments.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.Where("user_id = ?", id).First(&patient).Error
		switch {
		case err == nil:
			if err := tx.Where("patient_id = ?", patient.ID).Delete(&models.Appointment{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&patient).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Role").Preload("Patient").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

type DoctorStore struct {
	db *gorm.DB
}

func NewDoctorStore(db *gorm.DB) *DoctorStore {
	return &DoctorStore{db: db}
}

func (s *DoctorStore) Create(ctx context.Context, doctor *models.Doctor) error {
	return translate(s.db.WithContext(ctx).Create(doctor).Error, "doctor")
}

func (s *DoctorStore) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.WithContext(ctx).First(&doctor, id).Error; err != nil {
		return nil, translate(err, "id")
	}
	return &doctor, nil
}

func (s *DoctorStore) List(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := s.db.WithContext(ctx).Order("last_name, first_name").Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *DoctorStore) SetPhoto(ctx context.Context, id uint, url string) error {
	res := s.db.WithContext(ctx).Model(&models.Doctor{}).Where("id = ?", id).Update("photo_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type AppointmentStore struct {
	db *gorm.DB
}

func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func (s *AppointmentStore) OccupiedTimes(ctx context.Context, doctorID uint, date string) ([]string, error) {
	var times []string
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Order("time").
		Pluck("time", &times).Error
	if err != nil {
		return nil, fmt.Errorf("occupied times of doctor %d on %s: %w", doctorID, date, err)
	}
	return times, nil
}

func (s *AppointmentStore) Create(ctx context.Context, appointment *models.Appointment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Appointment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("doctor_id = ? AND date = ? AND time = ?", appointment.DoctorID, appointment.Date, appointment.Time).
			Limit(1).Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != 0 {
			return &ConflictError{Field: "time"}
		}
		// The unique index catches a concurrent insert of the same slot.
		if err := tx.Omit(clause.Associations).Create(appointment).Error; err != nil {
			return translate(err, "time")
		}
		return nil
	})
}

func (s *AppointmentStore) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).Preload("Doctor").Preload("Patient").First(&appointment, id).Error
	if err != nil {
		return nil, translate(err, "id")
	}
	return &appointment, nil
}

func (s *AppointmentStore) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).
		Order("date, time").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *AppointmentStore) ListByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Preload("Doctor").Preload("Patient").
		Where("date = ?", date).Order("time").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

type HolidayStore struct {
	db *gorm.DB
}

func NewHolidayStore(db *gorm.DB) *HolidayStore {
	return &HolidayStore{db: db}
}

func (s *HolidayStore) Create(ctx context.Context, holiday *models.Holiday) error {
	return translate(s.db.WithContext(ctx).Create(holiday).Error, "date")
}

func (s *HolidayStore) InMonth(ctx context.Context, year int, month time.Month) ([]models.Holiday, error) {
	var holidays []models.Holiday
	prefix := fmt.Sprintf("%04d-%02d-%%", year, int(month))
	if err := s.db.WithContext(ctx).Where("date LIKE ?", prefix).Order("date").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (s *HolidayStore) List(ctx context.Context) ([]models.Holiday, error) {
	var holidays []models.Holiday
	if err := s.db.WithContext(ctx).Order("date").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (s *HolidayStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Holiday{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
