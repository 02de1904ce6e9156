package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/meinhoongagan/clinic-app/config"
	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/cron"
	"github.com/meinhoongagan/clinic-app/db"
	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/redis"
	"github.com/meinhoongagan/clinic-app/routes"
	"github.com/meinhoongagan/clinic-app/store"
	"github.com/meinhoongagan/clinic-app/utils"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	logger := utils.NewLogger("clinic-app", cfg.App.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DatabaseURL, cfg.IsLocal())
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	if err := db.SeedRoles(database); err != nil {
		return err
	}
	logger.Info("database ready")

	users := store.NewUserStore(database)
	if err := seedAdmin(ctx, users, cfg, logger); err != nil {
		return err
	}
	doctors, err := store.NewCachedDoctors(store.NewDoctorStore(database), cfg.DoctorCacheSize)
	if err != nil {
		return err
	}
	appointments := store.NewAppointmentStore(database)

	h := &controllers.Handler{
		Users:        users,
		Doctors:      doctors,
		Appointments: appointments,
		Holidays:     store.NewHolidayStore(database),
		Mailer:       newMailer(cfg, logger),
		Grid:         cfg.Grid,
		Location:     cfg.Location,
		JWTSecret:    cfg.JWTSecret,
		Log:          logger,
	}
	if cfg.UploadsEnabled() {
		uploader, err := utils.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret, cfg.Cloudinary.UploadPreset)
		if err != nil {
			return err
		}
		h.Uploader = uploader
	}

	limit := routes.ResetLimit{Limit: cfg.Redis.ResetLimit, Window: cfg.Redis.ResetWindow, Log: logger}
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer client.Close()
		limit.Counter = redis.NewFixedWindow(client)
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	}

	reminders := &cron.Reminders{
		Appointments: appointments,
		Users:        users,
		Mailer:       h.Mailer,
		Location:     cfg.Location,
		Log:          logger.With("component", "reminders"),
	}
	scheduler, err := reminders.Start(cfg.ReminderSpec)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:   "clinic-app",
		BodyLimit: 6 << 20,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Clinic appointment service")
	})
	routes.Setup(app, h, limit)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	logger.Info("server starting", "port", cfg.HTTP.Port, "env", cfg.App.Env)
	return app.Listen(":" + cfg.HTTP.Port)
}

func newMailer(cfg *config.Config, logger *slog.Logger) utils.Mailer {
	if !cfg.MailEnabled() {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		return utils.LogMailer{Log: logger}
	}
	return utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
}

// seedAdmin creates the configured admin account once.
func seedAdmin(ctx context.Context, users store.Users, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}
	_, err := users.GetByEmail(ctx, cfg.Admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{Name: "Administrator", Email: cfg.Admin.Email, Password: string(hashed)}
	if err := users.CreateAdmin(ctx, admin); err != nil {
		return err
	}
	logger.Info("admin account created", "email", admin.Email)
	return nil
}

