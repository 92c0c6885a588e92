package config

import (
	"os"
	"strconv"
	"strings"
)

// Mail transport kinds. Console is the fallback when nothing is configured:
// it logs the rendered message and keeps the same call contract.
const (
	MailTransportConsole  = "console"
	MailTransportSMTP     = "smtp"
	MailTransportSendgrid = "sendgrid"
)

type Config struct {
	Environment string
	ServerPort  string
	JWTSecret   string
	JWTExpireHr int

	Mail    MailConfig
	Storage StorageConfig
	OAuth   OAuthConfig
	Jobs    JobsConfig
}

type MailConfig struct {
	Transport     string // console|smtp|sendgrid
	From          string // e.g. "Conference System <no-reply@your.org>"
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SkipTLSVerify bool
	SendgridKey   string

	// QueueURL, when set, routes outbound mail through an AMQP queue
	// instead of the in-process worker.
	QueueURL  string
	QueueName string
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string // overrides the endpoint URL in returned file URLs
	MaxUploadMB   int64
}

type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuthConfig struct {
	Google OAuthProviderConfig
	ORCID  OAuthProviderConfig
}

type JobsConfig struct {
	Enabled bool
	// DefaultRequiredReviews is the review quota used when a submission has
	// no assigned reviewers yet but a default applies for progress display.
	DefaultRequiredReviews int
}

// Load builds the configuration from environment variables. Call once in
// main after godotenv; the result is passed explicitly into components.
func Load() *Config {
	cfg := &Config{
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpireHr: getEnvInt("JWT_EXPIRE_HOURS", 24),
		Mail: MailConfig{
			Transport:     strings.ToLower(os.Getenv("MAIL_TRANSPORT")),
			From:          os.Getenv("MAIL_FROM"),
			SMTPHost:      os.Getenv("SMTP_HOST"),
			SMTPPort:      getEnvInt("SMTP_PORT", 587),
			SMTPUser:      os.Getenv("SMTP_USER"),
			SMTPPass:      os.Getenv("SMTP_PASS"),
			SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
			SendgridKey:   os.Getenv("SENDGRID_API_KEY"),
			QueueURL:      os.Getenv("MAIL_QUEUE_URL"),
			QueueName:     getEnv("MAIL_QUEUE_NAME", "cms.outbound-email"),
		},
		Storage: StorageConfig{
			Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:        getEnv("STORAGE_BUCKET", "cms-papers"),
			Region:        getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:        os.Getenv("STORAGE_USE_SSL") == "1",
			PublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
			MaxUploadMB:   int64(getEnvInt("STORAGE_MAX_UPLOAD_MB", 20)),
		},
		OAuth: OAuthConfig{
			Google: OAuthProviderConfig{
				ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
				RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			},
			ORCID: OAuthProviderConfig{
				ClientID:     os.Getenv("ORCID_CLIENT_ID"),
				ClientSecret: os.Getenv("ORCID_CLIENT_SECRET"),
				RedirectURL:  os.Getenv("ORCID_REDIRECT_URL"),
			},
		},
		Jobs: JobsConfig{
			Enabled:                os.Getenv("JOBS_DISABLED") != "1",
			DefaultRequiredReviews: getEnvInt("DEFAULT_REQUIRED_REVIEWS", 0),
		},
	}

	// Transport selection: an explicit MAIL_TRANSPORT wins, otherwise infer
	// from whichever credentials are present, falling back to console.
	if cfg.Mail.Transport == "" {
		switch {
		case cfg.Mail.SendgridKey != "":
			cfg.Mail.Transport = MailTransportSendgrid
		case cfg.Mail.SMTPHost != "" && cfg.Mail.From != "":
			cfg.Mail.Transport = MailTransportSMTP
		default:
			cfg.Mail.Transport = MailTransportConsole
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
