package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	CORS   CORSConfig
	Upload UploadConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOUNDSHELF_APP_ENV" default:"dev"`
	Port         string `envconfig:"SOUNDSHELF_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"SOUNDSHELF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUNDSHELF_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SOUNDSHELF_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN       string `envconfig:"SOUNDSHELF_DB_DSN"`
	UseSQLite bool   `envconfig:"SOUNDSHELF_USE_SQLITE" default:"false"`

	LegacyHost     string `envconfig:"SOUNDSHELF_DB_HOST"`
	LegacyPort     int    `envconfig:"SOUNDSHELF_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOUNDSHELF_DB_USER"`
	LegacyPassword string `envconfig:"SOUNDSHELF_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOUNDSHELF_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOUNDSHELF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOUNDSHELF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUNDSHELF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUNDSHELF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUNDSHELF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigin string `envconfig:"SOUNDSHELF_CORS_ALLOWED_ORIGIN" default:"http://localhost:3000"`
}

type UploadConfig struct {
	Dir         string `envconfig:"SOUNDSHELF_UPLOAD_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"SOUNDSHELF_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the hard per-file cap enforced while the stream
// is read.
func (u UploadConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return DefaultMaxUploadMB * 1024 * 1024
	}
	return int64(u.MaxUploadMB) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.UseSQLite || db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
