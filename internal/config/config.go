package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	// Business calendar settings. Relative date expressions resolve against
	// Location, never the caller's zone.
	Timezone         string
	Location         *time.Location
	CalendarID       string
	BusinessDayStart string
	BusinessDayEnd   string
	SlotDuration     time.Duration
	HoldTTL          time.Duration
	MaxAdvance       time.Duration
	PastGrace        time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	PostgresDSN string
	MongoURI    string
	RedisAddr   string
	RabbitURL   string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	IntakeBaseURL string
	IntakeTTL     time.Duration
	ZoneMapJSON   string

	OTLPEndpoint string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	tz := envOr("BUSINESS_TZ", "America/Los_Angeles")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:               envOr("ADDR", ":8080"),
		Timezone:           tz,
		Location:           loc,
		CalendarID:         envOr("CALENDAR_ID", "primary"),
		BusinessDayStart:   envOr("BUSINESS_DAY_START", "09:00"),
		BusinessDayEnd:     envOr("BUSINESS_DAY_END", "17:00"),
		SlotDuration:       durationOr("SLOT_DURATION", time.Hour),
		HoldTTL:            durationOr("HOLD_TTL", 15*time.Minute),
		MaxAdvance:         durationOr("MAX_ADVANCE", 45*24*time.Hour),
		PastGrace:          durationOr("PAST_GRACE", 24*time.Hour),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		MongoURI:           os.Getenv("MONGO_URI"),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RabbitURL:          os.Getenv("RABBIT_URL"),
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:         os.Getenv("TWILIO_FROM_NUMBER"),
		IntakeBaseURL:      os.Getenv("INTAKE_BASE_URL"),
		IntakeTTL:          durationOr("INTAKE_TTL", 24*time.Hour),
		ZoneMapJSON:        os.Getenv("ZONE_MAP_JSON"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

// GoogleConfigured reports whether the live calendar variant can be built.
// Provider selection is a pure function of credential presence.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRefreshToken != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, _ := time.ParseDuration(os.Getenv(key))
	if d == 0 {
		return fallback
	}
	return d
}
