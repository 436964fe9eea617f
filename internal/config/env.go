package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every present env file in order. Variables already in
// the process environment, or set by an earlier file, are not overwritten.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", logfields.File(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(name))
	}
}
