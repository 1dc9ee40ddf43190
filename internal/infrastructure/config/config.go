package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // "auto" (default), "drop" (drop and recreate)

	// Server
	ServerPort string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// JWT Authentication
	JWTSecretKey string

	// Admin
	DefaultAdminPassword string

	// SMS gateway (HTTP API used for all outbound SMS)
	SMSEnabled            bool
	SMSGatewayURL         string
	SMSGatewayToken       string
	SMSSenderID           string
	SMSDefaultCountryCode string
	SMSMaxRecipients      int
	SMSMinNotificationGap int // seconds between alerts to the same donor

	// Remaining stock below this many ml triggers a low-stock alert after
	// an approval
	LowStockThresholdMl int

	// MQTT broker for real-time donor alerts (optional)
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string

	// Donor eligibility thresholds
	DonationRecoveryDays int
	DonorWeightMinKg     int
	DonorHbMinMale       float64
	DonorHbMinFemale     float64
	DonorHbMinUnknown    float64

	// Geocoder
	GeocoderAllowRemote     bool
	GeocoderUserAgent       string
	GeocoderCountryBias     string
	GeocoderFixtures        map[string][2]float64
	GeocoderMinDelaySeconds float64
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	return &Config{
		EnvType: envType,

		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "bloodbridge_db")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", "bloodbridge-secret-key-change-in-production"),

		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),

		SMSEnabled:            getEnvAsBool("SMS_ENABLED", false),
		SMSGatewayURL:         getEnv("SMS_GATEWAY_URL", ""),
		SMSGatewayToken:       getEnv("SMS_GATEWAY_TOKEN", ""),
		SMSSenderID:           getEnv("SMS_SENDER_ID", "BLOODBRIDGE"),
		SMSDefaultCountryCode: getEnv("SMS_DEFAULT_COUNTRY_CODE", "+1"),
		SMSMaxRecipients:      getEnvAsInt("SMS_MAX_RECIPIENTS", 25),
		SMSMinNotificationGap: getEnvAsInt("SMS_MIN_NOTIFICATION_GAP_SECONDS", 21600),

		LowStockThresholdMl: getEnvAsInt("LOW_STOCK_THRESHOLD_ML", 500),

		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "bloodbridge-http-service"),
		MQTTUsername:  getEnv("MQTT_USERNAME", ""),
		MQTTPassword:  getEnv("MQTT_PASSWORD", ""),

		DonationRecoveryDays: getEnvAsInt("DONATION_RECOVERY_DAYS", 56),
		DonorWeightMinKg:     getEnvAsInt("DONOR_WEIGHT_MIN_KG", 50),
		DonorHbMinMale:       getEnvAsFloat("DONOR_HB_MIN_MALE", 13.0),
		DonorHbMinFemale:     getEnvAsFloat("DONOR_HB_MIN_FEMALE", 12.5),
		DonorHbMinUnknown:    getEnvAsFloat("DONOR_HB_MIN_UNKNOWN", 12.5),

		GeocoderAllowRemote:     getEnvAsBool("GEOCODER_ALLOW_REMOTE", false),
		GeocoderUserAgent:       getEnv("GEOCODER_USER_AGENT", "bloodbridge-geocoder"),
		GeocoderCountryBias:     getEnv("GEOCODER_COUNTRY_BIAS", ""),
		GeocoderFixtures:        parseGeocoderFixtures(getEnv("GEOCODER_STATIC_FIXTURES", "")),
		GeocoderMinDelaySeconds: getEnvAsFloat("GEOCODER_MIN_DELAY_SECONDS", 1.0),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// RecommenderWeights returns the donor scoring weights, with env overrides
// applied on top of the defaults. The scoring stays deterministic; the
// weights only tune it.
func (c *Config) RecommenderWeights() map[string]float64 {
	weights := map[string]float64{
		"blood_match":             50.0,
		"available":               10.0,
		"same_zip":                8.0,
		"has_coords":              1.0,
		"distance_km_penalty":     0.15,
		"missing_medical_penalty": 3.0,
		"hemoglobin_bonus":        3.0,
		"bp_ok_bonus":             1.5,
		"chronic_penalty":         6.0,
		"medication_penalty":      4.0,
		"smokes_penalty":          2.0,
	}
	for name := range weights {
		envKey := "RECOMMENDER_WEIGHT_" + strings.ToUpper(name)
		if raw, exists := os.LookupEnv(envKey); exists {
			if value, err := strconv.ParseFloat(raw, 64); err == nil {
				weights[name] = value
			}
		}
	}
	return weights
}

// parseGeocoderFixtures parses "key=lat,lon;key=lat,lon" into a lookup table.
// Fixtures act as deterministic geocoding results for demo zipcodes and tests.
func parseGeocoderFixtures(raw string) map[string][2]float64 {
	fixtures := make(map[string][2]float64)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		coords := strings.SplitN(parts[1], ",", 2)
		if len(coords) != 2 {
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		fixtures[strings.ToLower(strings.TrimSpace(parts[0]))] = [2]float64{lat, lon}
	}
	return fixtures
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as float with default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
