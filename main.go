package main

import (
	"os"

	"github.com/joho/godotenv"

	"site_cms/cmd"
)

func main() {
	envFile := os.Getenv("SITECMS_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// A missing env file is fine; settings can come from the environment.
	_ = godotenv.Load(envFile)
	cmd.Execute()
}
