package config

import "os"

// Config carries the process configuration read from the environment
type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDBName             string
	JWTSecret               string
	LogLevel                string
	LogFormat               string
	LogOutput               string
	LogFile                 string
}

// Load reads configuration from the environment with development defaults
func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDBName:             getEnv("MONGO_DB_NAME", "circleup"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "text"),
		LogOutput:               getEnv("LOG_OUTPUT", "stdout"),
		LogFile:                 getEnv("LOG_FILE", "logs/circleup.log"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
