package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/meinhoongagan/clinic-app/db"
	"github.com/meinhoongagan/clinic-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// openTestDB returns a migrated SQLite database with the roles seeded.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "clinic.db")), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedRoles(conn); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func newPatient(email, phone, pesel string) (*models.User, *models.Patient) {
	return &models.User{Name: "Test Patient", Email: email, Password: "hash"},
		&models.Patient{FirstName: "Test", LastName: "Patient", PhoneNumber: phone, PeselNumber: pesel}
}

func TestUserStore_CreatePatient(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))

	user, patient := newPatient("ewa@example.com", "600700800", "90010112345")
	if err := users.CreatePatient(ctx, user, patient); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	if user.ID == 0 || patient.UserID != user.ID || user.Role.Name != models.RolePatient {
		t.Fatalf("unexpected user %+v patient %+v", user, patient)
	}

	got, err := users.GetByEmail(ctx, "ewa@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.Role.Name != models.RolePatient || got.PatientID() != patient.ID {
		t.Fatalf("associations not loaded: %+v", got)
	}
	if _, err := users.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_CreatePatientConflicts(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(openTestDB(t))

	user, patient := newPatient("ewa@example.com", "600700800", "90010112345")
	if err := users.CreatePatient(ctx, user, patient); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}

	cases := []struct {
		name  string
		email string
		phone string
		pesel string
		field string
	}{
		{"email", "ewa@example.com", "511222333", "85050554321", "email"},
		{"phone", "eve@example.com", "600700800", "85050554321", "phone_number"},
		{"pesel", "eve@example.com", "511222333", "90010112345", "pesel_number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, p := newPatient(tc.email, tc.phone, tc.pesel)
			err := users.CreatePatient(ctx, u, p)
			var conflict *ConflictError
			if !errors.As(err, &conflict) || conflict.Field != tc.field {
				t.Fatalf("expected conflict on %s, got %v", tc.field, err)
			}
		})
	}

	if n, _ := users.Count(ctx); n != 1 {
		t.Fatalf("conflicting registrations were stored, have %d users", n)
	}
}

func TestUserStore_PatientConflictField(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	users := NewUserStore(conn)

	user, patient := newPatient("ewa@example.com", "600700800", "90010112345")
	if err := users.CreatePatient(ctx, user, patient); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}

	// The unique index reports a patient collision without the column.
	err := translate(conn.Create(&models.Patient{UserID: 99, PhoneNumber: "511222333", PeselNumber: "90010112345"}).Error, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected the unique index to reject the row, got %v", err)
	}
	if f := users.patientConflict(ctx, &models.Patient{PhoneNumber: "511222333", PeselNumber: "90010112345"}); f != "pesel_number" {
		t.Fatalf("expected pesel_number, got %q", f)
	}
	if f := users.patientConflict(ctx, &models.Patient{PhoneNumber: "600700800"}); f != "phone_number" {
		t.Fatalf("expected phone_number, got %q", f)
	}
}

func TestUserStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	users := NewUserStore(conn)
	appointments := NewAppointmentStore(conn)

	user, patient := newPatient("ewa@example.com", "600700800", "90010112345")
	if err := users.CreatePatient(ctx, user, patient); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	other, otherPatient := newPatient("eve@example.com", "511222333", "85050554321")
	if err := users.CreatePatient(ctx, other, otherPatient); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	for _, a := range []*models.Appointment{
		{PatientID: patient.ID, DoctorID: 1, Date: "2026-06-15", Time: "08:00"},
		{PatientID: patient.ID, DoctorID: 1, Date: "2026-06-16", Time: "08:00"},
		{PatientID: otherPatient.ID, DoctorID: 1, Date: "2026-06-15", Time: "09:00"},
	} {
		if err := appointments.Create(ctx, a); err != nil {
			t.Fatalf("Create appointment failed: %v", err)
		}
	}

	if err := users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.GetByID(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	var patients int64
	conn.Model(&models.Patient{}).Where("user_id = ?", user.ID).Count(&patients)
	if patients != 0 {
		t.Fatal("patient profile survived the delete")
	}
	if left, _ := appointments.ListByPatient(ctx, patient.ID); len(left) != 0 {
		t.Fatalf("appointments survived the delete: %+v", left)
	}
	if kept, _ := appointments.ListByPatient(ctx, otherPatient.ID); len(kept) != 1 {
		t.Fatalf("other patient's appointments were touched: %+v", kept)
	}

	if err := users.Delete(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := users.SetPassword(ctx, user.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for SetPassword, got %v", err)
	}
}

func TestAppointmentStore_CreateAndOccupiedTimes(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	appointments := NewAppointmentStore(conn)

	for _, a := range []*models.Appointment{
		{PatientID: 1, DoctorID: 1, Date: "2026-06-15", Time: "10:00"},
		{PatientID: 2, DoctorID: 1, Date: "2026-06-15", Time: "08:00"},
		{PatientID: 1, DoctorID: 1, Date: "2026-06-16", Time: "09:00"},
		{PatientID: 3, DoctorID: 2, Date: "2026-06-15", Time: "11:00"},
	} {
		if err := appointments.Create(ctx, a); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	times, err := appointments.OccupiedTimes(ctx, 1, "2026-06-15")
	if err != nil {
		t.Fatalf("OccupiedTimes failed: %v", err)
	}
	if len(times) != 2 || times[0] != "08:00" || times[1] != "10:00" {
		t.Fatalf("expected [08:00 10:00], got %v", times)
	}
	if times, _ := appointments.OccupiedTimes(ctx, 3, "2026-06-15"); len(times) != 0 {
		t.Fatalf("doctor without appointments has times %v", times)
	}

	err = appointments.Create(ctx, &models.Appointment{PatientID: 9, DoctorID: 1, Date: "2026-06-15", Time: "10:00"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "time" || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected a time conflict, got %v", err)
	}

	day, err := appointments.ListByDate(ctx, "2026-06-15")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(day) != 3 || day[0].Time != "08:00" {
		t.Fatalf("unexpected appointments of the day %+v", day)
	}
}

func TestAppointmentStore_UniqueSlotIndex(t *testing.T) {
	conn := openTestDB(t)

	first := &models.Appointment{PatientID: 1, DoctorID: 1, Date: "2026-06-15", Time: "10:00"}
	if err := conn.Omit(clause.Associations).Create(first).Error; err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// Bypasses the locked pre-check, as a concurrent insert would.
	dup := &models.Appointment{PatientID: 2, DoctorID: 1, Date: "2026-06-15", Time: "10:00"}
	err := translate(conn.Omit(clause.Associations).Create(dup).Error, "time")
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "time" {
		t.Fatalf("expected the unique index to report a time conflict, got %v", err)
	}
}

func TestAppointmentStore_GetByIDPreloads(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	doctors := NewDoctorStore(conn)
	appointments := NewAppointmentStore(conn)

	doctor := &models.Doctor{FirstName: "Anna", LastName: "Nowak", Specialization: "cardiology"}
	if err := doctors.Create(ctx, doctor); err != nil {
		t.Fatalf("Create doctor failed: %v", err)
	}
	a := &models.Appointment{PatientID: 1, DoctorID: doctor.ID, Date: "2026-06-15", Time: "10:00"}
	if err := appointments.Create(ctx, a); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := appointments.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Doctor == nil || got.Doctor.LastName != "Nowak" {
		t.Fatalf("doctor not preloaded: %+v", got)
	}
	if _, err := appointments.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDoctorStore(t *testing.T) {
	ctx := context.Background()
	doctors := NewDoctorStore(openTestDB(t))

	for _, d := range []*models.Doctor{
		{FirstName: "Jan", LastName: "Kowalski", Specialization: "dermatology"},
		{FirstName: "Anna", LastName: "Nowak", Specialization: "cardiology"},
		{FirstName: "Adam", LastName: "Kowalski", Specialization: "neurology"},
	} {
		if err := doctors.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := doctors.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 || list[0].FirstName != "Adam" || list[2].LastName != "Nowak" {
		t.Fatalf("expected ordering by last then first name, got %+v", list)
	}

	if err := doctors.SetPhoto(ctx, list[0].ID, "https://img/adam.png"); err != nil {
		t.Fatalf("SetPhoto failed: %v", err)
	}
	got, _ := doctors.GetByID(ctx, list[0].ID)
	if got.PhotoURL != "https://img/adam.png" {
		t.Fatalf("photo not saved: %+v", got)
	}
	if err := doctors.SetPhoto(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHolidayStore(t *testing.T) {
	ctx := context.Background()
	holidays := NewHolidayStore(openTestDB(t))

	for _, h := range []*models.Holiday{
		{Date: "2026-11-11", Name: "Independence Day"},
		{Date: "2026-11-01", Name: "All Saints"},
		{Date: "2026-12-25", Name: "Christmas"},
		{Date: "2025-11-11", Name: "Independence Day"},
	} {
		if err := holidays.Create(ctx, h); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	nov, err := holidays.InMonth(ctx, 2026, time.November)
	if err != nil {
		t.Fatalf("InMonth failed: %v", err)
	}
	if len(nov) != 2 || nov[0].Date != "2026-11-01" || nov[1].Date != "2026-11-11" {
		t.Fatalf("unexpected November 2026 holidays %+v", nov)
	}
	if jan, _ := holidays.InMonth(ctx, 2026, time.January); len(jan) != 0 {
		t.Fatalf("expected no January holidays, got %+v", jan)
	}

	err = holidays.Create(ctx, &models.Holiday{Date: "2026-11-11", Name: "Again"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "date" {
		t.Fatalf("expected a date conflict, got %v", err)
	}

	if err := holidays.Delete(ctx, nov[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := holidays.Delete(ctx, nov[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	all, _ := holidays.List(ctx)
	if len(all) != 3 || all[0].Date != "2025-11-11" {
		t.Fatalf("unexpected remaining holidays %+v", all)
	}
}
