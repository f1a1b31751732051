package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devlaunch/config"
	"devlaunch/database"
	"devlaunch/logger"
	"devlaunch/repository"
	"devlaunch/routers"
	"devlaunch/services/blacklist"
	"devlaunch/services/certificate"
	"devlaunch/services/email"
	"devlaunch/services/learning"
	"devlaunch/services/storage"
	"devlaunch/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	defer log.Sync()

	db, err := database.ConnectDb(cfg, log)
	if err != nil {
		log.Fatal("Database connection failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := learning.NewServiceFromDB(db, log, learning.Options{
		AuditSettle:      2 * time.Second,
		AuditConcurrency: cfg.AuditConcurrency,
	})
	go svc.Auditor().Run(ctx)

	store, err := newObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Object storage init failed", "error", err)
	}

	jobs := utils.Jobs{Auditor: svc.Auditor(), OTPs: repository.NewOTPRepository(db)}
	revoked, dbBlacklist := newBlacklist(cfg, db, log)
	if dbBlacklist != nil {
		jobs.Blacklist = dbBlacklist
	}
	sched, err := utils.StartScheduler(ctx, cfg.AuditCron, jobs, log)
	if err != nil {
		log.Fatal("Scheduler init failed", "error", err)
	}

	app := fiber.New(fiber.Config{BodyLimit: 512 << 20})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	routers.Setup(app, routers.Deps{
		Config:    cfg,
		DB:        db,
		Learning:  svc,
		Store:     store,
		Mailer:    email.NewMailer(newSender(cfg, log)),
		Blacklist: revoked,
		Renderer:  certificate.NewRenderer(cfg.CertificateFont),
		Log:       log,
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("Server stopped", "error", err)
	}
	<-sched.Stop().Done()
}

func newObjectStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.ObjectStore, error) {
	if cfg.UsesGCS() {
		return storage.NewGCSStore(ctx, cfg, log)
	}
	log.Warn("GCS buckets not configured, storing files locally", "dir", cfg.LocalStorageDir)
	return storage.NewLocalStore(cfg.LocalStorageDir, cfg.PublicBaseURL, cfg.JWTKey, log)
}

func newSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if cfg.SendgridAPIKey != "" {
		return email.NewSendgridSender(cfg.SendgridAPIKey, cfg.EmailSender, log)
	}
	log.Warn("SENDGRID_API_KEY not set, emails are logged only")
	return email.NewConsoleSender(log)
}

// newBlacklist prefers redis and falls back to the database table, which
// then also needs the periodic purge.
func newBlacklist(cfg *config.Config, db *gorm.DB, log *logger.Logger) (blacklist.Store, *blacklist.DBStore) {
	if cfg.RedisAddr != "" {
		store, err := blacklist.NewRedisStore(cfg.RedisAddr, log)
		if err == nil {
			return store, nil
		}
		log.Warn("Redis unavailable, using database token blacklist", "error", err)
	}
	dbStore := blacklist.NewDBStore(db)
	return dbStore, dbStore
}
