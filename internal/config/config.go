package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func Load() {
	/*
		START names the env file to load: .env-local for a local run,
		.env.docker inside the container. The start script sets it.
	*/
	if err := godotenv.Load(os.Getenv("START")); err != nil {
		log.Fatalf("Env file not found")
	}

	if os.Getenv("USERS_FILE") == "" && os.Getenv("MYSQL_DSN") == "" {
		log.Fatalf("Neither USERS_FILE nor MYSQL_DSN is set in environment")
	}
	if os.Getenv("USERS_FILE") != "" && os.Getenv("MYSQL_DSN") != "" {
		log.Fatalf("USERS_FILE and MYSQL_DSN are mutually exclusive")
	}
}

func Addr() string {
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		return addr
	}
	return ":3000"
}
