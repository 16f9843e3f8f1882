package config // package config loads application configuration from environment variables

import (
    "errors"
    "fmt"
    "io/fs"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  A .env file in the working directory is read
// first; variables already set in the environment win.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address; empty disables persistence
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing

    LogLevel  string // debug, info, warn, error
    LogFormat string // json or console

    ResetPolicy       string  // what reset does to bookings: cancel or clear
    RandomOccupancy   float64 // default fraction for the random occupancy generator
    PersistTimeout    time.Duration
    AMQPURL           string // RabbitMQ URL; empty disables event publishing
    ConsumerEnabled   bool   // run the booking audit-log consumer in-process
    BookingLogDir     string // directory of booking.log written by the consumer
    AllowOrigins      []string
    AdminEmails       []string // accounts registered with these emails get the ADMIN role
}

// PersistenceEnabled reports whether a MySQL database is configured.
func (c Config) PersistenceEnabled() bool { return c.DBHost != "" }

// Load reads configuration values from the environment and returns a
// Config.  Missing required variables are reported together in one error.
func Load() (Config, error) {
    if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
        return Config{}, fmt.Errorf("load .env: %w", err)
    }

    var missing []string
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            missing = append(missing, key)
        }
        return v
    }

    cfg := Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        JWTSecret:      must("JWT_SECRET"),
        DBUser:         envStr("DB_USER", "root"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         os.Getenv("DB_HOST"),
        DBPort:         envStr("DB_PORT", "3306"),
        DBName:         envStr("DB_NAME", "hotel"),
        AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
        RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
        BcryptCost:     envInt("BCRYPT_COST", 10),

        LogLevel:  envStr("LOG_LEVEL", "info"),
        LogFormat: envStr("LOG_FORMAT", "json"),

        ResetPolicy:     strings.ToLower(envStr("LEDGER_RESET_POLICY", "cancel")),
        RandomOccupancy: envFloat("RANDOM_OCCUPANCY_FRACTION", 0.3),
        PersistTimeout:  envDur("PERSIST_TIMEOUT", 5*time.Second),
        AMQPURL:         amqpURL(),
        ConsumerEnabled: envBool("QUEUE_CONSUMER_ENABLED", false),
        BookingLogDir:   envStr("BOOKING_LOG_DIR", "logs"),
        AllowOrigins:    splitList(envStr("CORS_ALLOW_ORIGINS", "*")),
        AdminEmails:     splitList(strings.ToLower(os.Getenv("ADMIN_EMAILS"))),
    }
    if len(missing) > 0 {
        return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
    }
    if cfg.ResetPolicy != "cancel" && cfg.ResetPolicy != "clear" {
        return Config{}, fmt.Errorf("invalid LEDGER_RESET_POLICY %q (want cancel or clear)", cfg.ResetPolicy)
    }
    if cfg.RandomOccupancy < 0 || cfg.RandomOccupancy > 1 {
        return Config{}, fmt.Errorf("invalid RANDOM_OCCUPANCY_FRACTION %s", strconv.FormatFloat(cfg.RandomOccupancy, 'f', -1, 64))
    }
    return cfg, nil
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.
func amqpURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
