package config

import "time"

// Config holds runtime settings for the launcher CLI and every backend
// client it wires up.
type Config struct {
	// DataDir holds the encrypted token vault and the local cache DB.
	DataDir string
	// HTTPTimeout applies to every backend HTTP client.
	HTTPTimeout time.Duration
	// CallbackAddr is the loopback listen address for authorization
	// callbacks.
	CallbackAddr string

	BotChat   BotChatConfig
	Tasks     TasksConfig
	Registrar RegistrarConfig
	Tracker   TrackerConfig
	Deploy    DeployConfig
	Notes     NotesConfig
	Shortcuts ShortcutsConfig
}

// BotChatConfig configures the chat-bot platform client.
type BotChatConfig struct {
	BaseURL  string
	AuthURL  string
	TokenURL string
	ClientID string
	PageSize int
}

// TasksConfig configures the task backend. A non-empty
// IntegrationToken bypasses the authorization flow entirely.
type TasksConfig struct {
	BaseURL          string
	AuthURL          string
	TokenURL         string
	ClientID         string
	IntegrationToken string
}

// RegistrarConfig holds the registrar API key pair.
type RegistrarConfig struct {
	BaseURL      string
	APIKey       string
	SecretAPIKey string
}

// TrackerConfig configures the issue tracker GraphQL client.
type TrackerConfig struct {
	Endpoint string
	AuthURL  string
	TokenURL string
	ClientID string
}

// DeployConfig configures the deployment platform client. Token is a
// personal access token; TeamID optionally scopes calls to a team.
type DeployConfig struct {
	BaseURL string
	Token   string
	TeamID  string
}

// NotesConfig configures the local note-graph backend client.
type NotesConfig struct {
	BaseURL string
	AppKey  string
}

// ShortcutsConfig configures the URL shortcut resolver. Language,
// Country and GithubUser expand into namespaces appended after
// Namespaces, so personal shortcuts shadow the shared ones.
type ShortcutsConfig struct {
	BaseURL    string
	Namespaces []string
	Language   string
	Country    string
	GithubUser string
}

// ResolvedNamespaces returns the full namespace list in priority order.
func (s ShortcutsConfig) ResolvedNamespaces() []string {
	out := append([]string{}, s.Namespaces...)
	if s.Language != "" {
		out = append(out, s.Language)
	}
	if s.Country != "" {
		out = append(out, "."+s.Country)
	}
	if s.GithubUser != "" {
		out = append(out, s.GithubUser)
	}
	return out
}

// LoadDefaults populates c with sensible defaults. Base URLs point at
// the public endpoints of each backend; the notes backend is local.
func (c *Config) LoadDefaults() {
	c.DataDir = "."
	c.HTTPTimeout = 30 * time.Second
	c.CallbackAddr = "127.0.0.1:43823"

	c.BotChat = BotChatConfig{
		BaseURL:  "https://api.coze.com",
		AuthURL:  "https://www.coze.com/api/permission/oauth2/authorize",
		TokenURL: "https://api.coze.com/api/permission/oauth2/token",
		PageSize: 20,
	}
	c.Tasks = TasksConfig{
		BaseURL:  "https://api.notion.com",
		AuthURL:  "https://api.notion.com/v1/oauth/authorize",
		TokenURL: "https://api.notion.com/v1/oauth/token",
	}
	c.Registrar = RegistrarConfig{BaseURL: "https://api.porkbun.com"}
	c.Tracker = TrackerConfig{
		Endpoint: "https://api.linear.app/graphql",
		AuthURL:  "https://linear.app/oauth/authorize",
		TokenURL: "https://api.linear.app/oauth/token",
	}
	c.Deploy = DeployConfig{BaseURL: "https://api.vercel.com"}
	c.Notes = NotesConfig{BaseURL: "http://127.0.0.1:31009"}
	c.Shortcuts = ShortcutsConfig{
		BaseURL:    "https://raw.githubusercontent.com/trovu/trovu/master/data/shortcuts",
		Namespaces: []string{"o"},
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays
// values from a dotenv file and process environment, a JSON file (if
// selected via -c/-config), and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
