package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Geocoder  GeocoderConfig
	Tables    TableConfig
	Directory DirectoryConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GeocoderConfig configures the upstream geocoding provider and its guards.
type GeocoderConfig struct {
	APIKey   string
	BaseURL  string
	Country  string
	Timeout  time.Duration
	CacheTTL time.Duration

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// TableConfig names the tables the directory reads and writes.
type TableConfig struct {
	Instructors    string
	Testimonials   string
	Configurations string
}

// DirectoryConfig holds instructor directory business settings.
type DirectoryConfig struct {
	PriorityWindowMonths  int
	PrioritySweepInterval time.Duration
	DisplayTestimonials   bool
	TestimonialLimit      int
	WideAreaPattern       string
	LegacyPasswordCopy    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxFailures := v.GetInt("GEOCODER_BREAKER_MAX_FAILURES")
	if maxFailures <= 0 {
		maxFailures = 5
	}
	cfg.Geocoder = GeocoderConfig{
		APIKey:             v.GetString("GEOCODER_API_KEY"),
		BaseURL:            v.GetString("GEOCODER_BASE_URL"),
		Country:            v.GetString("GEOCODER_COUNTRY"),
		Timeout:            parseDuration(v.GetString("GEOCODER_TIMEOUT"), 5*time.Second),
		CacheTTL:           parseDuration(v.GetString("GEOCODE_CACHE_TTL"), 720*time.Hour),
		BreakerMaxFailures: uint32(maxFailures),
		BreakerOpenTimeout: parseDuration(v.GetString("GEOCODER_BREAKER_OPEN_TIMEOUT"), 30*time.Second),
	}

	cfg.Tables = TableConfig{
		Instructors:    v.GetString("INSTRUCTORS_TABLE"),
		Testimonials:   v.GetString("TESTIMONIALS_TABLE"),
		Configurations: v.GetString("CONFIGURATIONS_TABLE"),
	}

	window := v.GetInt("PRIORITY_WINDOW_MONTHS")
	if window <= 0 {
		window = 3
	}
	limit := v.GetInt("TESTIMONIAL_LIMIT")
	if limit <= 0 {
		limit = 5
	}
	cfg.Directory = DirectoryConfig{
		PriorityWindowMonths:  window,
		PrioritySweepInterval: parseDuration(v.GetString("PRIORITY_SWEEP_INTERVAL"), time.Hour),
		DisplayTestimonials:   v.GetBool("DISPLAY_TESTIMONIALS"),
		TestimonialLimit:      limit,
		WideAreaPattern:       v.GetString("WIDE_AREA_PATTERN"),
		LegacyPasswordCopy:    v.GetBool("LEGACY_PASSWORD_COPY"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "instructor_directory")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "instructor-directory")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GEOCODER_API_KEY", "")
	v.SetDefault("GEOCODER_BASE_URL", "https://maps.googleapis.com/maps/api/geocode")
	v.SetDefault("GEOCODER_COUNTRY", "UK")
	v.SetDefault("GEOCODER_TIMEOUT", "5s")
	v.SetDefault("GEOCODE_CACHE_TTL", "720h")
	v.SetDefault("GEOCODER_BREAKER_MAX_FAILURES", 5)
	v.SetDefault("GEOCODER_BREAKER_OPEN_TIMEOUT", "30s")

	v.SetDefault("INSTRUCTORS_TABLE", "instructors")
	v.SetDefault("TESTIMONIALS_TABLE", "instructor_testimonials")
	v.SetDefault("CONFIGURATIONS_TABLE", "configurations")

	v.SetDefault("PRIORITY_WINDOW_MONTHS", 3)
	v.SetDefault("PRIORITY_SWEEP_INTERVAL", "1h")
	v.SetDefault("DISPLAY_TESTIMONIALS", true)
	v.SetDefault("TESTIMONIAL_LIMIT", 5)
	v.SetDefault("WIDE_AREA_PATTERN", "^(AB|DD|DG|HS|IV|KW|PA|PH|TD|ZE|LD|SY|LL|TR)$")
	v.SetDefault("LEGACY_PASSWORD_COPY", false)
}

func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
