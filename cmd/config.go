package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"orderdispatch/internal/core/domain/services"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBLogSQL   bool

	JWTSecret string
	// AuthPolicyFile optionally replaces the built-in role policy with casbin CSV lines.
	AuthPolicyFile string

	KafkaHost              string
	KafkaOrderChangedTopic string

	DispatchSchedule string
	DispatchBatch    int

	Pricing  services.PricingPolicy
	Earnings services.EarningsPolicy
	Dispatch services.DispatchPolicy
	Weights  services.ScoreWeights
	ETA      services.ETAPolicy
}

// PolicyFromEnv overlays environment overrides on the default policies.
// Unparsable values are reported and the default is kept.
func PolicyFromEnv(c *Config) {
	c.Pricing = services.DefaultPricingPolicy()
	c.Pricing.TaxRate = envDecimal("PRICING_TAX_RATE", c.Pricing.TaxRate)
	c.Pricing.BaseDeliveryFee = envDecimal("PRICING_BASE_DELIVERY_FEE", c.Pricing.BaseDeliveryFee)
	c.Pricing.FreeRadiusKm = envDecimal("PRICING_FREE_RADIUS_KM", c.Pricing.FreeRadiusKm)
	c.Pricing.PerKmRate = envDecimal("PRICING_PER_KM_RATE", c.Pricing.PerKmRate)

	c.Earnings = services.DefaultEarningsPolicy()
	c.Earnings.BaseFee = envDecimal("EARNINGS_BASE_FEE", c.Earnings.BaseFee)
	c.Earnings.BonusThresholdKm = envDecimal("EARNINGS_BONUS_THRESHOLD_KM", c.Earnings.BonusThresholdKm)
	c.Earnings.BonusPerKm = envDecimal("EARNINGS_BONUS_PER_KM", c.Earnings.BonusPerKm)
	c.Earnings.OnTimeTolerance = envDuration("EARNINGS_ON_TIME_TOLERANCE", c.Earnings.OnTimeTolerance)

	c.Dispatch = services.DefaultDispatchPolicy()
	c.Dispatch.RadiusKm = envFloat("DISPATCH_RADIUS_KM", c.Dispatch.RadiusKm)
	c.Dispatch.CandidateLimit = envInt("DISPATCH_CANDIDATE_LIMIT", c.Dispatch.CandidateLimit)
	if c.Dispatch.RadiusKm <= 0 || c.Dispatch.RadiusKm > 10 {
		log.Warnf("DISPATCH_RADIUS_KM=%v is outside (0, 10], using 5", c.Dispatch.RadiusKm)
		c.Dispatch.RadiusKm = 5
	}

	c.Weights = services.DefaultScoreWeights()
	c.Weights.Rating = envFloat("DISPATCH_WEIGHT_RATING", c.Weights.Rating)
	c.Weights.Completion = envFloat("DISPATCH_WEIGHT_COMPLETION", c.Weights.Completion)
	c.Weights.Proximity = envFloat("DISPATCH_WEIGHT_PROXIMITY", c.Weights.Proximity)
	c.Weights.OnTime = envFloat("DISPATCH_WEIGHT_ON_TIME", c.Weights.OnTime)

	c.ETA = services.DefaultETAPolicy()
	c.ETA.AverageSpeedKmh = envFloat("ETA_AVERAGE_SPEED_KMH", c.ETA.AverageSpeedKmh)
	c.ETA.RegularPrepTime = envDuration("ETA_REGULAR_PREP_TIME", c.ETA.RegularPrepTime)
	c.ETA.TmartPrepTime = envDuration("ETA_TMART_PREP_TIME", c.ETA.TmartPrepTime)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return parsed
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(v)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return parsed
}

// LoadConfig reads the process environment. Call after godotenv has loaded .env.
func LoadConfig() Config {
	c := Config{
		HTTPPort:   envString("HTTP_PORT", "8080"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envString("DB_NAME", "orderdispatch"),
		DBSslMode:  envString("DB_SSLMODE", "disable"),
		DBLogSQL:   envBool("DB_LOG_SQL", false),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AuthPolicyFile: os.Getenv("AUTH_POLICY_FILE"),

		KafkaHost:              os.Getenv("KAFKA_HOST"),
		KafkaOrderChangedTopic: envString("KAFKA_ORDER_CHANGED_TOPIC", "order.changed"),

		DispatchSchedule: os.Getenv("DISPATCH_SCHEDULE"),
		DispatchBatch:    envInt("DISPATCH_BATCH", 50),
	}
	PolicyFromEnv(&c)
	return c
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBSslMode,
	)
}
