package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/umlbuilder/internal/logfields"
)

// envFiles are read in order. godotenv never overrides a variable that is
// already set, so the process environment wins, then .env.local, then .env.
var envFiles = []string{".env.local", ".env"}

func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(name))
	}
}
