package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// eventDateLayout is the local-time format accepted for EVENT_DATE besides RFC3339
const eventDateLayout = "2006-01-02 15:04:05"

// Config holds the application configuration
type Config struct {
	HTTPAddr       string
	PublicURL      string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration

	DataDir       string
	StorageDriver string
	StorageKey    string
	RedisURL      string

	EventTitle        string
	EventTagline      string
	EventDate         time.Time
	CountdownInterval time.Duration
	ContactFields     bool

	MediaDir       string
	HeroVideo      string
	CountdownImage string

	LogLevel string

	// Warnings lists variables that were set but could not be parsed and
	// fell back to their default
	Warnings []string
}

// LoadConfig loads configuration from environment variables or defaults
func LoadConfig() *Config {
	var l loader
	cfg := &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8080"),
		AllowedOrigins: getList("ALLOWED_ORIGINS"),
		ReadTimeout:    l.getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:   l.getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:    l.getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),

		DataDir:       getEnv("DATA_DIR", "data"),
		StorageDriver: getEnv("STORAGE_DRIVER", "file"),
		StorageKey:    getEnv("STORAGE_KEY", "guests"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),

		EventTitle:        getEnv("EVENT_TITLE", "Celebrating Femosh @ 40"),
		EventTagline:      getEnv("EVENT_TAGLINE", "Join us for an unforgettable celebration!"),
		EventDate:         l.getTime("EVENT_DATE", time.Date(2025, time.August, 30, 0, 0, 0, 0, time.Local)),
		CountdownInterval: l.getDuration("COUNTDOWN_INTERVAL", time.Second),
		ContactFields:     l.getBool("RSVP_CONTACT_FIELDS", true),

		MediaDir:       getEnv("MEDIA_DIR", "public"),
		HeroVideo:      getEnv("HERO_VIDEO", "/video/hero-video.mp4"),
		CountdownImage: getEnv("COUNTDOWN_IMAGE", "/assets/banner/count.jpg"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	cfg.Warnings = l.warnings
	return cfg
}

// loader collects the variables rejected while parsing
type loader struct {
	warnings []string
}

func (l *loader) reject(key, value, want string) {
	l.warnings = append(l.warnings, fmt.Sprintf("%s=%q is not %s, using default", key, value, want))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (l *loader) getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		l.reject(key, value, "a boolean")
		return defaultValue
	}
	return b
}

func (l *loader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		l.reject(key, value, "a positive duration")
		return defaultValue
	}
	return d
}

func (l *loader) getTime(key string, defaultValue time.Time) time.Time {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(eventDateLayout, value, time.Local); err == nil {
		return t
	}
	l.reject(key, value, "RFC3339 or "+eventDateLayout)
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
