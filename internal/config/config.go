package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env        string // application environment (dev, test, prod)
    Port       string // HTTP port to listen on
    DBUser     string // database username
    DBPass     string // database password (optional)
    DBHost     string // database host address
    DBPort     string // database port number
    DBName     string // database name
    DBMigrate  bool   // apply the embedded schema at startup
    JWTSecret  string // secret used to sign identity tokens
    TokenTTL   time.Duration
    BcryptCost int

    PaymentSuccessRate float64        // probability a simulated payment succeeds
    PaymentTimeout     time.Duration  // bound on one payment attempt
    TxTimeout          time.Duration  // bound on a booking transaction once begun
    Location           *time.Location // calendar used to decide what "today" is

    RabbitURL string // empty disables event publishing and the booking log consumer
    BookingLog string // file the event consumer appends to
}

// Load reads configuration values from environment variables.  Required
// variables are enforced by must(); missing values stop the process.
func Load() Config {
    return Config{
        Env:        must("APP_ENV"),
        Port:       must("APP_PORT"),
        DBUser:     must("DB_USER"),
        DBPass:     os.Getenv("DB_PASS"),
        DBHost:     must("DB_HOST"),
        DBPort:     must("DB_PORT"),
        DBName:     must("DB_NAME"),
        DBMigrate:  envBool("DB_MIGRATE", false),
        JWTSecret:  must("JWT_SECRET"),
        TokenTTL:   time.Duration(envInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
        BcryptCost: mustInt("BCRYPT_COST"),

        PaymentSuccessRate: envFloat("PAYMENT_SUCCESS_RATE", 0.7),
        PaymentTimeout:     envDur("PAYMENT_TIMEOUT", 5*time.Second),
        TxTimeout:          envDur("TX_TIMEOUT", 15*time.Second),
        Location:           mustLocation(envStr("APP_TIMEZONE", "UTC")),

        RabbitURL:  os.Getenv("RABBITMQ_URL"),
        BookingLog: envStr("BOOKING_LOG_FILE", "logs/booking.log"),
    }
}

// IsProd reports whether the service runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

func mustLocation(name string) *time.Location {
    loc, err := time.LoadLocation(name)
    if err != nil {
        log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
    }
    return loc
}
