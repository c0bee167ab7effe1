package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/launchdeck/internal/botchat"
	"github.com/dmitrijs2005/launchdeck/internal/config"
	"github.com/dmitrijs2005/launchdeck/internal/deploy"
	"github.com/dmitrijs2005/launchdeck/internal/filex"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/notes"
	"github.com/dmitrijs2005/launchdeck/internal/oauth"
	"github.com/dmitrijs2005/launchdeck/internal/registrar"
	"github.com/dmitrijs2005/launchdeck/internal/shortcuts"
	"github.com/dmitrijs2005/launchdeck/internal/storage"
	"github.com/dmitrijs2005/launchdeck/internal/storage/cache"
	"github.com/dmitrijs2005/launchdeck/internal/storage/history"
	"github.com/dmitrijs2005/launchdeck/internal/storage/vault"
	"github.com/dmitrijs2005/launchdeck/internal/tasks"
	"github.com/dmitrijs2005/launchdeck/internal/tracker"
)

// App wires the backend clients behind the interactive launcher.
type App struct {
	cfg *config.Config
	log logging.Logger

	vault   vault.Store
	kv      cache.Store
	history history.Store
	closeDB func() error

	auth *oauth.Registry

	bots      *botchat.Client
	tasks     *tasks.Client
	registrar *registrar.Client
	tracker   *tracker.Client
	deploy    *deploy.Client
	notes     *notes.Client
	shortcuts *shortcuts.Service

	reader *bufio.Reader
	out    io.Writer

	// chat session state
	workspaceID    string
	botID          string
	conversationID string
}

// NewApp opens the local database, unlocks the token vault and builds
// every backend client. The vault key comes from a key file in the
// data directory; when the file does not exist yet and a passphrase is
// configured or entered, the key is derived from it instead.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    logging.NewDefault(logging.DefaultLevel),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("preparing data dir: %w", err)
	}

	db, err := storage.Open(ctx, "file:"+filepath.Join(dir, "launchdeck.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.closeDB = db.Close

	key, err := a.vaultKey(ctx, db, dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.vault = vault.NewSQLiteStore(db, key)
	a.kv = cache.NewSQLiteStore(db)
	a.history = history.NewSQLiteStore(db)

	a.auth = oauth.NewRegistry(a.vault, cfg.CallbackAddr, oauth.WithRegistryLogger(a.log))
	a.buildClients()
	return a, nil
}

// vaultKey unlocks the token vault. Key file first; otherwise a
// passphrase, from the environment or prompted.
func (a *App) vaultKey(ctx context.Context, db *sql.DB, dir string) ([]byte, error) {
	keyPath := filepath.Join(dir, "vault.key")
	if _, err := os.Stat(keyPath); err == nil {
		return vault.LoadOrCreateKeyFile(keyPath)
	}

	passphrase := []byte(os.Getenv("LAUNCHDECK_VAULT_PASSPHRASE"))
	if len(passphrase) == 0 {
		pw, err := GetPassword(a.out, "Vault passphrase (empty for a key file): ")
		if err != nil {
			return nil, err
		}
		passphrase = pw
	}
	if len(passphrase) == 0 {
		return vault.LoadOrCreateKeyFile(keyPath)
	}
	key, err := vault.KeyFromPassphrase(ctx, db, passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking vault: %w", err)
	}
	return key, nil
}

func (a *App) buildClients() {
	cfg := a.cfg

	a.auth.Register("botchat", oauth.Provider{
		Name:     "botchat",
		AuthURL:  cfg.BotChat.AuthURL,
		TokenURL: cfg.BotChat.TokenURL,
		ClientID: cfg.BotChat.ClientID,
	})
	a.bots = botchat.New(cfg.BotChat.BaseURL, a.auth.Source("botchat"), a.kv,
		botchat.WithLogger(a.log), botchat.WithPageSize(cfg.BotChat.PageSize))

	var taskTokens tasks.TokenSource
	if cfg.Tasks.IntegrationToken != "" {
		taskTokens = oauth.Static(cfg.Tasks.IntegrationToken)
	} else {
		a.auth.Register("tasks", oauth.Provider{
			Name:     "tasks",
			AuthURL:  cfg.Tasks.AuthURL,
			TokenURL: cfg.Tasks.TokenURL,
			ClientID: cfg.Tasks.ClientID,
		})
		taskTokens = a.auth.Source("tasks")
	}
	a.tasks = tasks.New(cfg.Tasks.BaseURL, taskTokens, tasks.WithLogger(a.log))

	a.registrar = registrar.New(cfg.Registrar.BaseURL, registrar.Credentials{
		APIKey:       cfg.Registrar.APIKey,
		SecretAPIKey: cfg.Registrar.SecretAPIKey,
	}, registrar.WithLogger(a.log))

	a.auth.Register("tracker", oauth.Provider{
		Name:     "tracker",
		AuthURL:  cfg.Tracker.AuthURL,
		TokenURL: cfg.Tracker.TokenURL,
		ClientID: cfg.Tracker.ClientID,
	})
	a.tracker = tracker.New(cfg.Tracker.Endpoint, a.auth.Source("tracker"), tracker.WithLogger(a.log))

	var deployOpts []deploy.Option
	deployOpts = append(deployOpts, deploy.WithLogger(a.log))
	if cfg.Deploy.TeamID != "" {
		deployOpts = append(deployOpts, deploy.WithTeam(cfg.Deploy.TeamID))
	}
	a.deploy = deploy.New(cfg.Deploy.BaseURL, oauth.Static(cfg.Deploy.Token), deployOpts...)

	a.notes = notes.New(cfg.Notes.BaseURL, oauth.Static(cfg.Notes.AppKey), notes.WithLogger(a.log))

	a.shortcuts = shortcuts.New(cfg.Shortcuts.BaseURL, cfg.Shortcuts.ResolvedNamespaces(), a.kv,
		shortcuts.WithLogger(a.log))
}

// Run starts the interactive loop and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the database.
func (a *App) Close() {
	if a.closeDB != nil {
		if err := a.closeDB(); err != nil {
			a.log.Warn(context.Background(), "closing database", "error", err)
		}
	}
}
