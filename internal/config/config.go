package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMS      SMSConfig
	Referral ReferralConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
	Mode         string // debug, release, test
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	Driver string // mongo, memory
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds the Redis connection used for distributed locks.
// An empty Addr falls back to process-local locks.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// SMSConfig holds SMS gateway-specific configuration
type SMSConfig struct {
	DefaultGateway    string
	MockSMSGateway    bool
	BulkRatePerSecond float64
	TweetSMS          TweetSMSConfig
	Twilio            TwilioConfig
	SNS               SNSConfig
}

// TweetSMSConfig holds the TweetSMS endpoint. Credentials live in the database.
type TweetSMSConfig struct {
	BaseURL string
}

// TwilioConfig holds Twilio credentials
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// SNSConfig holds AWS SNS settings
type SNSConfig struct {
	Region   string
	SenderID string
}

// ReferralConfig holds referral fee policy
type ReferralConfig struct {
	FeeAmount        string
	CodeTTLHours     int
	ExcludeCancelled bool
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from an optional .env file, config.yaml
// under path and environment variables, in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if hosts := GetEnvAsSlice("SERVER_ALLOWED_HOSTS", ",", nil); hosts != nil {
		config.Server.AllowedHosts = hosts
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "mongo", "memory":
	default:
		return errors.New("storage driver must be mongo or memory")
	}
	if c.Storage.Driver == "mongo" && c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI is required for the mongo storage driver")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("Server.AllowedHosts", []string{"http://localhost:5173"})
	v.SetDefault("Server.Mode", "release")
	v.SetDefault("Storage.Driver", "mongo")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MongoDB.Database", "aidhub")
	v.SetDefault("Redis.Addr", "")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	v.SetDefault("SMS.DefaultGateway", "TWEETSMS")
	v.SetDefault("SMS.MockSMSGateway", false)
	v.SetDefault("SMS.BulkRatePerSecond", 10)
	v.SetDefault("SMS.TweetSMS.BaseURL", "https://tweetsms.ps")
	v.SetDefault("SMS.Twilio.AccountSID", "")
	v.SetDefault("SMS.Twilio.AuthToken", "")
	v.SetDefault("SMS.Twilio.FromNumber", "")
	v.SetDefault("SMS.SNS.Region", "")
	v.SetDefault("SMS.SNS.SenderID", "")
	v.SetDefault("Referral.FeeAmount", "5")
	v.SetDefault("Referral.CodeTTLHours", 168)
	v.SetDefault("Referral.ExcludeCancelled", false)
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "json")
}
