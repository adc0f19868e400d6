package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "academy/internal/adapters/email"
	"academy/internal/adapters/filestore"
	web "academy/internal/adapters/http"
	"academy/internal/adapters/storage"
	accountStore "academy/internal/adapters/storage/account"
	activityStore "academy/internal/adapters/storage/activity"
	applicantStore "academy/internal/adapters/storage/applicant"
	fileStore "academy/internal/adapters/storage/file"
	registrationStore "academy/internal/adapters/storage/registration"
	"academy/internal/domain/account"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("ACADEMY_DB_PATH", "academy.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}
	log.Println("Database initialized successfully!")

	timedDB := storage.NewTimedDB(db)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:      acctStore,
		ApplicantStore:    applicantStore.NewSQLiteStore(timedDB),
		ActivityStore:     activityStore.NewSQLiteStore(timedDB),
		RegistrationStore: registrationStore.NewSQLiteStore(timedDB),
		FileStore:         fileStore.NewSQLiteStore(timedDB),
	}

	// Seed the first admin account when the portal starts empty.
	adminEmail := envOrDefault("ACADEMY_ADMIN_EMAIL", "admin@academy.local")
	if err := seedAdmin(context.Background(), acctStore, adminEmail); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("ACADEMY_RESEND_KEY")
	emailFrom := envOrDefault("ACADEMY_RESEND_FROM", "Academy <noreply@academy.local>")
	emailReply := envOrDefault("ACADEMY_REPLY_TO", adminEmail)
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("ACADEMY_ENV") == "production" {
			log.Println("WARNING: ACADEMY_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set ACADEMY_RESEND_KEY for real delivery)")
		}
	}

	// Configure upload storage
	uploadDir := envOrDefault("ACADEMY_UPLOAD_DIR", "uploads")
	diskStore, err := filestore.NewDiskStore(uploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload dir: %v", err)
	}
	web.SetFilestore(diskStore)

	// Configure the PromptPay receiving account for payment codes
	if target := os.Getenv("ACADEMY_PROMPTPAY_TARGET"); target != "" {
		web.SetPromptPayTarget(target)
		log.Println("PromptPay payment codes enabled")
	}

	mux := web.NewMux("static", stores)

	addr := envOrDefault("ACADEMY_ADDR", ":8080")
	log.Printf("Academy %s starting on %s (env=%s)", version, addr, envOrDefault("ACADEMY_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// seedAdmin creates the bootstrap admin when no accounts exist yet.
func seedAdmin(ctx context.Context, store accountStore.Store, email string) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return store.Save(ctx, account.Account{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: "Administrator",
		Role:        account.RoleAdmin,
		CreatedAt:   time.Now(),
	})
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
