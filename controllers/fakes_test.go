package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/availability"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/store"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUsers struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	nextUser uint
	nextPat  uint
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint]*models.User{}}
}

func (f *fakeUsers) CreatePatient(ctx context.Context, user *models.User, patient *models.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return &store.ConflictError{Field: "email"}
		}
		if u.Patient != nil && u.Patient.PeselNumber == patient.PeselNumber {
			return &store.ConflictError{Field: "pesel_number"}
		}
		if u.Patient != nil && u.Patient.PhoneNumber == patient.PhoneNumber {
			return &store.ConflictError{Field: "phone_number"}
		}
	}
	f.nextUser++
	f.nextPat++
	user.ID = f.nextUser
	user.Role = models.Role{ID: 2, Name: models.RolePatient}
	patient.ID = f.nextPat
	patient.UserID = user.ID
	user.Patient = patient

	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUsers) CreateAdmin(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUser++
	user.ID = f.nextUser
	user.Role = models.Role{ID: 1, Name: models.RoleAdmin}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) SetPassword(ctx context.Context, id uint, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeDoctors struct {
	doctors map[uint]models.Doctor
}

func (f *fakeDoctors) Create(ctx context.Context, doctor *models.Doctor) error {
	doctor.ID = uint(len(f.doctors) + 1)
	f.doctors[doctor.ID] = *doctor
	return nil
}

func (f *fakeDoctors) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	out := make([]models.Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDoctors) SetPhoto(ctx context.Context, id uint, url string) error {
	d, ok := f.doctors[id]
	if !ok {
		return store.ErrNotFound
	}
	d.PhotoURL = url
	f.doctors[id] = d
	return nil
}

type fakeAppointments struct {
	mu   sync.Mutex
	list []models.Appointment
}

func (f *fakeAppointments) OccupiedTimes(ctx context.Context, doctorID uint, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var times []string
	for _, a := range f.list {
		if a.DoctorID == doctorID && a.Date == date {
			times = append(times, a.Time)
		}
	}
	return times, nil
}

func (f *fakeAppointments) Create(ctx context.Context, appointment *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.list {
		if a.DoctorID == appointment.DoctorID && a.Date == appointment.Date && a.Time == appointment.Time {
			return &store.ConflictError{Field: "time"}
		}
	}
	appointment.ID = uint(len(f.list) + 1)
	f.list = append(f.list, *appointment)
	return nil
}

func (f *fakeAppointments) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.list {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAppointments) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.list {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) ListByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.list {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeHolidays struct {
	list []models.Holiday
}

func (f *fakeHolidays) Create(ctx context.Context, holiday *models.Holiday) error {
	for _, h := range f.list {
		if h.Date == holiday.Date {
			return &store.ConflictError{Field: "date"}
		}
	}
	holiday.ID = uint(len(f.list) + 1)
	f.list = append(f.list, *holiday)
	return nil
}

func (f *fakeHolidays) InMonth(ctx context.Context, year int, month time.Month) ([]models.Holiday, error) {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(availability.MonthLayout) + "-"
	var out []models.Holiday
	for _, h := range f.list {
		if len(h.Date) == len(availability.DateLayout) && h.Date[:len(prefix)] == prefix {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHolidays) List(ctx context.Context) ([]models.Holiday, error) {
	return f.list, nil
}

func (f *fakeHolidays) Delete(ctx context.Context, id uint) error {
	for i, h := range f.list {
		if h.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeUploader struct {
	url string
	err error
	got []byte
}

func (u *fakeUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.got = b
	return u.url, nil
}

type testEnv struct {
	h            *Handler
	users        *fakeUsers
	doctors      *fakeDoctors
	appointments *fakeAppointments
	holidays     *fakeHolidays
	mailer       *fakeMailer
	app          *fiber.App
}

// newTestEnv pins "now" to Wednesday 2026-06-10 10:00 in Warsaw and seeds two doctors.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	env := &testEnv{
		users: newFakeUsers(),
		doctors: &fakeDoctors{doctors: map[uint]models.Doctor{
			1: {Model: gorm.Model{ID: 1}, FirstName: "Anna", LastName: "Nowak", Specialization: "cardiology"},
			2: {Model: gorm.Model{ID: 2}, FirstName: "Jan", LastName: "Kowalski", Specialization: "dermatology"},
		}},
		appointments: &fakeAppointments{},
		holidays:     &fakeHolidays{},
		mailer:       &fakeMailer{},
	}
	env.h = &Handler{
		Users:        env.users,
		Doctors:      env.doctors,
		Appointments: env.appointments,
		Holidays:     env.holidays,
		Mailer:       env.mailer,
		Grid:         availability.DefaultGrid,
		Location:     loc,
		JWTSecret:    "test-secret",
		Log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now: func() time.Time {
			return time.Date(2026, time.June, 10, 10, 0, 0, 0, loc)
		},
	}
	env.app = mount(env.h)
	return env
}

func mount(h *Handler) *fiber.App {
	app := fiber.New()
	auth := middleware.Protected(h.JWTSecret)
	patient := middleware.RequireRole(models.RolePatient)
	admin := middleware.RequireRole(models.RoleAdmin)

	app.Post("/users/add", h.Register)
	app.Post("/users/login", h.Login)
	app.Post("/users/refresh", h.RefreshToken)
	app.Post("/users/resetPassword", h.ResetPassword)
	app.Get("/users/me", auth, h.GetUserProfile)
	app.Get("/users/admin", auth, admin, h.AdminPanel)
	app.Delete("/users/delete/:id", auth, admin, h.DeleteUser)

	app.Get("/doctors/all", auth, h.GetAllDoctors)
	app.Post("/doctors/addDoctor", auth, admin, h.AddDoctor)
	app.Post("/doctors/:id/photo", auth, admin, h.UploadDoctorPhoto)

	app.Get("/appointments/book/:id", auth, patient, h.BookingDays)
	app.Post("/appointments/book/time/:id", auth, patient, h.BookingHours)
	app.Post("/appointments/book/:id", auth, patient, h.CreateAppointment)
	app.Get("/appointments/appointmentData", auth, h.GetAppointmentData)
	app.Get("/appointments/:id", auth, h.GetAppointment)

	app.Get("/holidays", auth, h.GetHolidays)
	app.Post("/holidays", auth, admin, h.CreateHoliday)
	app.Delete("/holidays/:id", auth, admin, h.DeleteHoliday)
	return app
}

// patient registers a patient directly in the fake store and returns it with an access token.
func (e *testEnv) patient(t *testing.T, email, pesel string) (*models.User, string) {
	t.Helper()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{Name: "Test Patient", Email: email, Password: string(hashed)}
	patient := &models.Patient{FirstName: "Test", LastName: "Patient", PeselNumber: pesel, PhoneNumber: pesel[:9]}
	if err := e.users.CreatePatient(context.Background(), user, patient); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	token, err := e.h.accessToken(user)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return user, token
}

func (e *testEnv) admin(t *testing.T) (*models.User, string) {
	t.Helper()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("adminpass1"), bcrypt.MinCost)
	user := &models.User{Name: "Administrator", Email: "admin@clinic.test", Password: string(hashed)}
	if err := e.users.CreateAdmin(context.Background(), user); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, err := e.h.accessToken(user)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, token)
}

func (e *testEnv) send(t *testing.T, req *http.Request, token string) (int, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return v
}

var errSMTP = errors.New("smtp unavailable")
