package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/flagx"
	"github.com/dmitrijs2005/launchdeck/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so JSON can specify timeouts either as
// strings like "30s" or as integer nanoseconds. Credentials are kept
// out of the JSON schema on purpose; they belong to the env layer.
type JsonConfig struct {
	DataDir      string         `json:"data_dir"`
	HTTPTimeout  timex.Duration `json:"http_timeout"`
	CallbackAddr string         `json:"callback_addr"`

	BotChat struct {
		BaseURL  string `json:"base_url"`
		AuthURL  string `json:"auth_url"`
		TokenURL string `json:"token_url"`
		PageSize int    `json:"page_size"`
	} `json:"botchat"`

	Tasks struct {
		BaseURL  string `json:"base_url"`
		AuthURL  string `json:"auth_url"`
		TokenURL string `json:"token_url"`
	} `json:"tasks"`

	Registrar struct {
		BaseURL string `json:"base_url"`
	} `json:"registrar"`

	Tracker struct {
		Endpoint string `json:"endpoint"`
		AuthURL  string `json:"auth_url"`
		TokenURL string `json:"token_url"`
	} `json:"tracker"`

	Deploy struct {
		BaseURL string `json:"base_url"`
		TeamID  string `json:"team_id"`
	} `json:"deploy"`

	Notes struct {
		BaseURL string `json:"base_url"`
	} `json:"notes"`

	Shortcuts struct {
		BaseURL    string   `json:"base_url"`
		Namespaces []string `json:"namespaces"`
		Language   string   `json:"language"`
		Country    string   `json:"country"`
		GithubUser string   `json:"github_user"`
	} `json:"shortcuts"`
}

// parseJson overlays Config with values loaded from a JSON file chosen
// via the -c/-config flags. Absent fields keep their earlier values.
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig
	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.CallbackAddr, jc.CallbackAddr)
	if jc.HTTPTimeout.Duration > 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeout.Duration)
	}

	overlay(&cfg.BotChat.BaseURL, jc.BotChat.BaseURL)
	overlay(&cfg.BotChat.AuthURL, jc.BotChat.AuthURL)
	overlay(&cfg.BotChat.TokenURL, jc.BotChat.TokenURL)
	if jc.BotChat.PageSize > 0 {
		cfg.BotChat.PageSize = jc.BotChat.PageSize
	}

	overlay(&cfg.Tasks.BaseURL, jc.Tasks.BaseURL)
	overlay(&cfg.Tasks.AuthURL, jc.Tasks.AuthURL)
	overlay(&cfg.Tasks.TokenURL, jc.Tasks.TokenURL)
	overlay(&cfg.Registrar.BaseURL, jc.Registrar.BaseURL)
	overlay(&cfg.Tracker.Endpoint, jc.Tracker.Endpoint)
	overlay(&cfg.Tracker.AuthURL, jc.Tracker.AuthURL)
	overlay(&cfg.Tracker.TokenURL, jc.Tracker.TokenURL)
	overlay(&cfg.Deploy.BaseURL, jc.Deploy.BaseURL)
	overlay(&cfg.Deploy.TeamID, jc.Deploy.TeamID)
	overlay(&cfg.Notes.BaseURL, jc.Notes.BaseURL)

	overlay(&cfg.Shortcuts.BaseURL, jc.Shortcuts.BaseURL)
	if len(jc.Shortcuts.Namespaces) > 0 {
		cfg.Shortcuts.Namespaces = jc.Shortcuts.Namespaces
	}
	overlay(&cfg.Shortcuts.Language, jc.Shortcuts.Language)
	overlay(&cfg.Shortcuts.Country, jc.Shortcuts.Country)
	overlay(&cfg.Shortcuts.GithubUser, jc.Shortcuts.GithubUser)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
