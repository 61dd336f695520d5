package initializers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const devJWTSecret = "smartbite-development-secret"

var validMailDrivers = map[string]bool{"log": true, "smtp": true, "relay": true}

type Config struct {
	AppEnv string `env:"APP_ENV,default=development"`
	Port   string `env:"PORT,default=8080"`

	DBHost            string        `env:"DB_HOST,default=localhost"`
	DBPort            int           `env:"DB_PORT,default=3306"`
	DBUser            string        `env:"DB_USER,default=root"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=smartbite"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=48h"`

	// Separate multiple origins with ';'.
	CORSOrigins []string `env:"CORS_ORIGINS,default=http://localhost:3000;http://localhost:5173"`

	// Proxies allowed to set X-Forwarded-For, separated by ';'. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	MailDriver       string `env:"MAIL_DRIVER,default=log"`
	MailFrom         string `env:"MAIL_FROM,default=orders@smartbite.local"`
	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         int    `env:"SMTP_PORT,default=587"`
	SMTPUser         string `env:"SMTP_USER"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	RelayURL         string `env:"MAIL_RELAY_URL,default=https://api.emailjs.com/api/v1.0/email/send"`
	RelayServiceID   string `env:"MAIL_RELAY_SERVICE_ID"`
	RelayTemplateID  string `env:"MAIL_RELAY_TEMPLATE_ID"`
	RelayPublicKey   string `env:"MAIL_RELAY_PUBLIC_KEY"`
	RelayAccessToken string `env:"MAIL_RELAY_ACCESS_TOKEN"`
	TemplateDir      string `env:"TEMPLATE_DIR,default=templates"`

	S3Bucket string `env:"AWS_S3_BUCKET"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE,default=smartbite_orders"`

	NotifyWorkers     int    `env:"NOTIFY_WORKERS,default=2"`
	NotifyQueueSize   int    `env:"NOTIFY_QUEUE_SIZE,default=100"`
	NotifyMaxAttempts int    `env:"NOTIFY_MAX_ATTEMPTS,default=5"`
	NotifySweepSpec   string `env:"NOTIFY_SWEEP_SPEC,default=@every 1m"`

	AuthRatePerSec float64 `env:"AUTH_RATE_PER_SEC,default=5"`
	AuthRateBurst  int     `env:"AUTH_RATE_BURST,default=10"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// LoadEnv reads .env into the process environment when the file exists.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadConfig decodes the environment into a Config and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate checks the configuration and fills in development-only fallbacks.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.JWTSecret = devJWTSecret
		}
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.DBMaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS"))
	}
	if !validMailDrivers[c.MailDriver] {
		errs = append(errs, fmt.Errorf("MAIL_DRIVER %q is not one of log, smtp, relay", c.MailDriver))
	}
	if c.MailDriver == "smtp" && c.SMTPHost == "" {
		errs = append(errs, errors.New("SMTP_HOST is required when MAIL_DRIVER=smtp"))
	}
	if c.MailDriver == "relay" && (c.RelayServiceID == "" || c.RelayTemplateID == "" || c.RelayPublicKey == "") {
		errs = append(errs, errors.New("MAIL_RELAY_SERVICE_ID, MAIL_RELAY_TEMPLATE_ID and MAIL_RELAY_PUBLIC_KEY are required when MAIL_DRIVER=relay"))
	}
	if c.NotifyWorkers <= 0 {
		errs = append(errs, errors.New("NOTIFY_WORKERS must be positive"))
	}
	if c.NotifyMaxAttempts <= 0 {
		errs = append(errs, errors.New("NOTIFY_MAX_ATTEMPTS must be positive"))
	}
	if c.AuthRatePerSec <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_PER_SEC and AUTH_RATE_BURST must be positive"))
	}

	return errors.Join(errs...)
}
