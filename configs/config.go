package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBNameTest     string
	RedisHost      string
	RedisPort      int
	JWTSecret      string
	SendGridAPIKey string
	EmailFrom      string
	Port           int
}

func LoadConfig() Config {
	// Load the .env file if present
	if err := godotenv.Load(); err != nil {
		// Only log when not running under tests
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432
	}

	redisPort, err := strconv.Atoi(os.Getenv("REDIS_PORT"))
	if err != nil {
		redisPort = 6379
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 3000
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "secret"
	}

	return Config{
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         dbPort,
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBNameTest:     os.Getenv("DB_NAME_TEST"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      redisPort,
		JWTSecret:      secret,
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:      os.Getenv("EMAIL_FROM"),
		Port:           port,
	}
}
