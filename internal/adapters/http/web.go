package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"academy/internal/adapters/email"
	"academy/internal/adapters/filestore"
	"academy/internal/adapters/http/middleware"
	accountStore "academy/internal/adapters/storage/account"
	activityStore "academy/internal/adapters/storage/activity"
	applicantStore "academy/internal/adapters/storage/applicant"
	fileStore "academy/internal/adapters/storage/file"
	registrationStore "academy/internal/adapters/storage/registration"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	ApplicantStore    applicantStore.Store
	ActivityStore     activityStore.Store
	RegistrationStore registrationStore.Store
	FileStore         fileStore.Store
}

// loadCSRFKey reads the CSRF secret from ACADEMY_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("ACADEMY_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("ACADEMY_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("ACADEMY_ENV") == "production" {
		log.Fatal("ACADEMY_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set ACADEMY_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global upload store instance (set by SetFilestore)
var uploads filestore.Store

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// PromptPay target account for payment QR payloads (set by SetPromptPayTarget)
var promptPayTarget string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// SetFilestore sets the global upload byte store.
func SetFilestore(fs filestore.Store) {
	uploads = fs
}

// SetPromptPayTarget sets the PromptPay account used for payment codes.
func SetPromptPayTarget(target string) {
	promptPayTarget = target
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores) http.Handler {
	stores = s
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("ACADEMY_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(200*time.Millisecond),
	)
}
