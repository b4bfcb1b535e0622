package config

import (
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace/models"
)

// DefaultSQLiteDSN waits on a locked database instead of failing with
// SQLITE_BUSY and lets readers run alongside the single writer.
const DefaultSQLiteDSN = "marketplace.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"marketplace.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"`

	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	RefreshSecret   string        `envconfig:"REFRESH_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"4h"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE" default:"true"`

	PageSize   int    `envconfig:"PAGE_SIZE" default:"10"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`

	Model        string `envconfig:"MODEL" default:"ollama"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	OllamaHost   string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel  string `envconfig:"OLLAMA_MODEL" default:"deepseek-r1:latest"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"marketplace.events"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations envconfig tags cannot express
func (c *Config) Validate() error {
	if c.JWTSecret == c.RefreshSecret {
		return errors.New("JWT_SECRET and REFRESH_SECRET must differ")
	}
	if c.PageSize <= 0 {
		return errors.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	switch c.Model {
	case "ollama":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when MODEL=gemini")
		}
	default:
		return errors.Errorf("unknown MODEL %q (want ollama or gemini)", c.Model)
	}
	return nil
}

// ConfigureLogging applies LOG_LEVEL and picks a formatter for the gin mode
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.GinMode == "release" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// OpenDB connects to the configured database driver
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		// Orders outlive the products they reference, and the
		// store treats rows as independent documents.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", driver)
	}
	return db, nil
}

// Migrate creates or updates every table the marketplace uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return errors.Wrap(err, "migrating database")
	}
	log.Info("database migrated")
	return nil
}
