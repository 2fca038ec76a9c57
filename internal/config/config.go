package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For cache TTL

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DBDriver       string        // Database driver: mysql, postgres or sqlite
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	DatabaseDSN    string        // Full DSN, overrides the parts above
	DBPath         string        // SQLite database file
	RedisAddr      string        // Redis server address, empty disables the report cache
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	ReportCacheTTL time.Duration // How long report results stay cached
	JWTSecret      string        // JWT secret key, empty disables operator auth
	OperatorUser   string        // Operator username for /auth/token
	OperatorHash   string        // Bcrypt hash of the operator password
	LogLevel       string        // Log level
	IsProd         bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttl, err := strconv.Atoi(getEnv("REPORT_CACHE_TTL", "60"))
	if err != nil || ttl < 0 {
		ttl = 60 // Fall back to the default TTL
	}
	driver := getEnv("DB_DRIVER", "mysql")
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),             // Application port
		DBDriver:       driver,                                 // Database driver
		DBUser:         os.Getenv("DB_USER"),                   // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),               // Database password
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),         // Database host
		DBPort:         getEnv("DB_PORT", defaultPort(driver)), // Database port
		DBName:         os.Getenv("DB_NAME"),                   // Database name
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),              // Full DSN
		DBPath:         getEnv("DB_PATH", "banking.db"),        // SQLite file
		RedisAddr:      os.Getenv("REDIS_ADDR"),                // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                // Redis password
		RedisDB:        redisDB,                                // Redis database number
		ReportCacheTTL: time.Duration(ttl) * time.Second,       // Report cache TTL
		JWTSecret:      os.Getenv("JWT_SECRET"),                // JWT secret key
		OperatorUser:   os.Getenv("OPERATOR_USER"),             // Operator username
		OperatorHash:   os.Getenv("OPERATOR_PASSWORD_HASH"),    // Operator password hash
		LogLevel:       os.Getenv("LOG_LEVEL"),                 // Log level
		IsProd:         os.Getenv("IS_PROD") == "true",         // Is production environment
	}
}

// DSN returns the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	switch c.DBDriver {
	case "sqlite":
		return c.DBPath
	case "postgres":
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	}
}

// AuthEnabled reports whether write routes require an operator token
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// defaultPort is the server port of the driver's database
func defaultPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
