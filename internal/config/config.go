package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	DBHost     string `env:"DB_HOST,required"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBName     string `env:"DB_NAME,required"`
	JWTSecret  string `env:"JWT_SECRET,required"`

	// Storage: "local" keeps files under UploadDir, "s3" uses the bucket.
	StorageMode string `env:"STORAGE_MODE" envDefault:"local"`
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	MigrationsDir string   `env:"MIGRATIONS_DIR" envDefault:"./migrations"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func (c *Config) UseS3() bool {
	return c.StorageMode == "s3"
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.StorageMode {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return nil, fmt.Errorf("STORAGE_MODE=s3 requires S3_BUCKET and S3_REGION")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}

	log.Info("✅ Config loaded")
	return cfg, nil
}
