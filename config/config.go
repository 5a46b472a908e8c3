package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	VNPay VNPayConfig
	Auth  AuthConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	FrontendURL string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// VNPayConfig holds merchant credentials and the URLs used when building
// payment redirects. HashAlgorithm is "sha512" or "sha3-512".
type VNPayConfig struct {
	PaymentURL      string
	TmnCode         string
	HashSecret      string
	HashAlgorithm   string
	ReturnURL       string
	Version         string
	Locale          string
	OrderType       string
	ReferencePrefix string
}

type AuthConfig struct {
	ResetCodeTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Environment variables alone are enough in containers.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	resetCodeTTL, err := time.ParseDuration(viper.GetString("AUTH_RESET_CODE_TTL"))
	if err != nil {
		resetCodeTTL = 15 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			LogLevel:    viper.GetString("LOG_LEVEL"),
			FrontendURL: viper.GetString("FRONTEND_URL"),
		},
		DB: DBConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		VNPay: VNPayConfig{
			PaymentURL:      viper.GetString("VNPAY_URL"),
			TmnCode:         viper.GetString("VNPAY_TMN_CODE"),
			HashSecret:      viper.GetString("VNPAY_HASH_SECRET"),
			HashAlgorithm:   viper.GetString("VNPAY_HASH_ALGORITHM"),
			ReturnURL:       viper.GetString("VNPAY_RETURN_URL"),
			Version:         viper.GetString("VNPAY_VERSION"),
			Locale:          viper.GetString("VNPAY_LOCALE"),
			OrderType:       viper.GetString("VNPAY_ORDER_TYPE"),
			ReferencePrefix: viper.GetString("VNPAY_REFERENCE_PREFIX"),
		},
		Auth: AuthConfig{
			ResetCodeTTL: resetCodeTTL,
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.VNPay.HashSecret == "" {
		return nil, errors.New("VNPAY_HASH_SECRET is required")
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("VNPAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	viper.SetDefault("VNPAY_HASH_ALGORITHM", "sha512")
	viper.SetDefault("VNPAY_VERSION", "2.1.0")
	viper.SetDefault("VNPAY_LOCALE", "vn")
	viper.SetDefault("VNPAY_ORDER_TYPE", "other")
	viper.SetDefault("VNPAY_REFERENCE_PREFIX", "CH")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
