package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/budadmin/internal/console/store"
	"github.com/aussiebroadwan/budadmin/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/budadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/budadmin/pkg/cryptox"
	"github.com/aussiebroadwan/budadmin/pkg/httpx"
	"github.com/aussiebroadwan/budadmin/pkg/jwtx"
	"github.com/aussiebroadwan/budadmin/pkg/session"
	"github.com/aussiebroadwan/budadmin/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Options are the hooks the caller plugs into the application.
type Options struct {
	// OnLogout runs after every logout, including forced ones.
	OnLogout func()

	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Application wires the session store, the session manager and the API
// client together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	sdk     *adminsdk.SDKClient
	session *session.Manager
	api     *adminsdk.APIClient
}

// New opens the session store and builds the clients. The persisted session
// is not restored until Restore is called.
func New(cfg Config, opts Options) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "budadmin",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  opts.LogOutput,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	sessionStore, err := app.sessionStore()
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.sdk = adminsdk.NewSDKClient(cfg.APIBaseURL)
	app.sdk.HTTPClient = &http.Client{
		Timeout: cfg.APITimeout,
		Transport: httpx.RequestIDTransport(
			slogx.Transport(app.logger,
				httpx.RateLimitTransport(cfg.RateLimit, nil),
			),
		),
	}

	app.session = session.NewManager(session.Config{
		Store:          sessionStore,
		Refresher:      app.sdk,
		Logger:         app.logger.With("component", "session"),
		OnLogout:       opts.OnLogout,
		RefreshTimeout: cfg.RefreshTimeout,
	})
	app.api = app.sdk.WithSession(app.session)

	return app, nil
}

// initStore opens the session database and applies migrations
func (app *Application) initStore() error {
	db, err := sqlite.NewStore(app.cfg.SessionFile)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply session store migrations: %w", err)
	}

	app.db = db
	app.logger.Debug("session store ready", "path", app.cfg.SessionFile)
	return nil
}

// sessionStore seals tokens at rest when master key material is available.
func (app *Application) sessionStore() (session.Store, error) {
	material, err := cryptox.LoadKeyMaterial(app.cfg.MasterKeyPath, MasterKeyEnv)
	if errors.Is(err, cryptox.ErrNoKeyMaterial) {
		app.logger.Debug("no master key, session tokens stored unsealed")
		return app.db, nil
	}
	if err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer(material)
	if err != nil {
		return nil, err
	}
	return store.NewSealedStore(app.db, sealer), nil
}

// Restore adopts the persisted session, refreshing it if it has expired. A
// persisted session that could not be restored is reported as
// session.ErrAuthRequired. Having no session at all is not an error.
func (app *Application) Restore(ctx context.Context) error {
	if err := app.db.Ping(ctx); err != nil {
		return fmt.Errorf("session store unavailable: %w", err)
	}

	persisted, err := app.session.AccessToken(ctx)
	if err != nil {
		return err
	}
	if err := app.session.Restore(ctx); err != nil {
		return err
	}
	if persisted != "" && !app.session.IsAuthenticated() {
		return fmt.Errorf("restore session: %w", session.ErrAuthRequired)
	}
	return nil
}

// Login authenticates against the API and persists the resulting session.
// The account record is cached for whoami.
func (app *Application) Login(ctx context.Context, username, password string) (*session.Identity, error) {
	tokens, err := app.sdk.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := app.session.Login(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return nil, err
	}
	if !app.session.IsAuthenticated() {
		return nil, errors.New("login: server returned an unreadable access token")
	}

	me, err := app.api.Me(ctx)
	if err == nil {
		if err := app.session.CacheUser(ctx, me); err != nil {
			app.logger.Warn("failed to cache user", "error", err)
		}
	} else {
		app.logger.Debug("could not fetch account record", "error", err)
	}

	// A 401 from /auth/me has already logged the new session out.
	id := app.session.Identity()
	if id == nil {
		if err != nil {
			return nil, fmt.Errorf("login: %w: %w", session.ErrAuthRequired, err)
		}
		return nil, fmt.Errorf("login: %w", session.ErrAuthRequired)
	}
	return id, nil
}

// SessionStatus describes the persisted session.
type SessionStatus struct {
	Identity *session.Identity

	// ExpiresIn is zero once the access token has expired
	ExpiresIn time.Duration

	// UpdatedAt is when the token pair was last written, by login or refresh
	UpdatedAt time.Time
}

// Status reports the adopted identity along with the lifetime left on the
// persisted access token.
func (app *Application) Status(ctx context.Context) (SessionStatus, error) {
	st := SessionStatus{Identity: app.session.Identity()}

	tok, err := app.session.AccessToken(ctx)
	if err != nil || tok == "" {
		return st, err
	}
	if claims, err := jwtx.Decode(tok); err == nil {
		st.ExpiresIn = claims.ExpiresIn(time.Now())
	}

	at, err := app.db.UpdatedAt(ctx, session.KeyAccessToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return st, fmt.Errorf("read session timestamp: %w", err)
	}
	st.UpdatedAt = at
	return st, nil
}

// Logout clears the persisted session.
func (app *Application) Logout(ctx context.Context) error {
	return app.session.Logout(ctx)
}

// Setup creates the first admin account on a fresh deployment.
func (app *Application) Setup(ctx context.Context, req adminsdk.UserCreate) (*adminsdk.User, error) {
	return app.sdk.Setup(ctx, req)
}

func (app *Application) API() *adminsdk.APIClient  { return app.api }
func (app *Application) Session() *session.Manager { return app.session }
func (app *Application) Logger() *slog.Logger      { return app.logger }
func (app *Application) Config() Config            { return app.cfg }

// Close releases the session store.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
		return err
	}
	return nil
}
