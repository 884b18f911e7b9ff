package configs

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type ENV struct {
	AppEnv     string
	Port       string
	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	SQLitePath string

	AppAuthKey    string
	AppEncKey     string
	CSRFKey       string
	JWTSecret     string
	AdminPassword string

	MongoURI     string
	MongoDB      string
	KafkaBrokers []string
	KafkaTopic   string

	StorageDisk      string
	StorageLocalRoot string
	StorageURL       string
	S3Bucket         string
	S3Region         string
	S3Key            string
	S3Secret         string
	S3Endpoint       string
	S3URL            string

	OrderStatusStrict bool
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Msg("No .env file found, using process environment")
	}

	return ENV{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("APP_PORT", ":5000"),
		DBDriver:          getEnv("DB_DRIVER", "sqlite"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getEnv("DB_PORT", "3306"),
		SQLitePath:        getEnv("SQLITE_PATH", "heartscript_v2.db"),
		AppAuthKey:        os.Getenv("APP_AUTH_KEY"),
		AppEncKey:         os.Getenv("APP_ENC_KEY"),
		CSRFKey:           os.Getenv("CSRF_KEY"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           getEnv("MONGO_DB", "heartscript_db"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "heartscript-mirror"),
		StorageDisk:       getEnv("STORAGE_DISK", "local"),
		StorageLocalRoot:  getEnv("STORAGE_LOCAL_ROOT", "static/uploads"),
		StorageURL:        getEnv("STORAGE_URL", "/static/uploads"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Key:             os.Getenv("S3_KEY"),
		S3Secret:          os.Getenv("S3_SECRET"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3URL:             os.Getenv("S3_URL"),
		OrderStatusStrict: getBool("ORDER_STATUS_STRICT", false),
	}

}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production" || e.AppEnv == "prod"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean in environment, using default")
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
