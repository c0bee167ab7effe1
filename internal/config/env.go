package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment,
// after loading a .env file from the working directory if one exists.
// Credentials are the main residents of this layer so they stay out of
// JSON config files.
func parseEnv(cfg *Config) {
	// A missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	setString(&cfg.DataDir, "LAUNCHDECK_DATA_DIR")
	setString(&cfg.CallbackAddr, "LAUNCHDECK_CALLBACK_ADDR")
	if v := os.Getenv("LAUNCHDECK_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = d
		}
	}

	setString(&cfg.BotChat.ClientID, "LAUNCHDECK_BOTCHAT_CLIENT_ID")
	setString(&cfg.Tasks.ClientID, "LAUNCHDECK_TASKS_CLIENT_ID")
	setString(&cfg.Tasks.IntegrationToken, "LAUNCHDECK_TASKS_TOKEN")
	setString(&cfg.Registrar.APIKey, "LAUNCHDECK_REGISTRAR_API_KEY")
	setString(&cfg.Registrar.SecretAPIKey, "LAUNCHDECK_REGISTRAR_SECRET_KEY")
	setString(&cfg.Tracker.ClientID, "LAUNCHDECK_TRACKER_CLIENT_ID")
	setString(&cfg.Deploy.Token, "LAUNCHDECK_DEPLOY_TOKEN")
	setString(&cfg.Deploy.TeamID, "LAUNCHDECK_DEPLOY_TEAM_ID")
	setString(&cfg.Notes.AppKey, "LAUNCHDECK_NOTES_APP_KEY")

	setString(&cfg.Shortcuts.Language, "LAUNCHDECK_SHORTCUTS_LANGUAGE")
	setString(&cfg.Shortcuts.Country, "LAUNCHDECK_SHORTCUTS_COUNTRY")
	setString(&cfg.Shortcuts.GithubUser, "LAUNCHDECK_SHORTCUTS_GITHUB_USER")
	if v := os.Getenv("LAUNCHDECK_SHORTCUTS_NAMESPACES"); v != "" {
		cfg.Shortcuts.Namespaces = splitList(v)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
