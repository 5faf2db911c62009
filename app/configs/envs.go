package configs

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ENV struct {
	AppEnv string
	Port   string
	AppURL string

	DBDriver     string
	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       string
	DBMaxRetries int
	DBRetryDelay time.Duration

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AppAuthKey  string
	AppEncKey   string
	GuestTTL    time.Duration
	CSRFEnabled bool

	RedisURL string

	S3Bucket        string
	AWSRegion       string
	S3PublicBaseURL string
	MediaRoot       string
	MediaURL        string

	MidtransServerKey  string
	MidtransClientKey  string
	MidtransProduction bool

	DefaultAssigneeEmail string
	CurrencySymbol       string
	PageSize             int
	MaxPageSize          int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_URL", "http://localhost:8080")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_MAX_RETRIES", 10)
	v.SetDefault("DB_RETRY_DELAY", "5s")

	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("REFRESH_TOKEN_TTL", "24h")
	v.SetDefault("GUEST_TTL", "168h")
	v.SetDefault("CSRF_ENABLED", false)

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_URL", "/media/")

	v.SetDefault("MIDTRANS_PRODUCTION", false)

	v.SetDefault("CURRENCY_SYMBOL", "$")
	v.SetDefault("PAGE_SIZE", 20)
	v.SetDefault("MAX_PAGE_SIZE", 100)
}

// LoadEnv reads .env (when present) and the process environment.
func LoadEnv() ENV {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return ENV{
		AppEnv: v.GetString("APP_ENV"),
		Port:   v.GetString("APP_PORT"),
		AppURL: v.GetString("APP_URL"),

		DBDriver:     v.GetString("DB_DRIVER"),
		DBHost:       v.GetString("DB_HOST"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBPort:       v.GetString("DB_PORT"),
		DBMaxRetries: v.GetInt("DB_MAX_RETRIES"),
		DBRetryDelay: v.GetDuration("DB_RETRY_DELAY"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),

		AppAuthKey:  v.GetString("APP_AUTH_KEY"),
		AppEncKey:   v.GetString("APP_ENC_KEY"),
		GuestTTL:    v.GetDuration("GUEST_TTL"),
		CSRFEnabled: v.GetBool("CSRF_ENABLED"),

		RedisURL: v.GetString("REDIS_URL"),

		S3Bucket:        v.GetString("S3_BUCKET"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3PublicBaseURL: v.GetString("S3_PUBLIC_BASE_URL"),
		MediaRoot:       v.GetString("MEDIA_ROOT"),
		MediaURL:        v.GetString("MEDIA_URL"),

		MidtransServerKey:  v.GetString("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:  v.GetString("MIDTRANS_CLIENT_KEY"),
		MidtransProduction: v.GetBool("MIDTRANS_PRODUCTION"),

		DefaultAssigneeEmail: v.GetString("DEFAULT_ASSIGNEE_EMAIL"),
		CurrencySymbol:       v.GetString("CURRENCY_SYMBOL"),
		PageSize:             v.GetInt("PAGE_SIZE"),
		MaxPageSize:          v.GetInt("MAX_PAGE_SIZE"),
	}
}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}
