package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"
)

// ConsentFlow obtains an authorization code for a prepared consent URL.
// Implementations may block on user interaction; tests substitute a fake.
type ConsentFlow interface {
	Obtain(ctx context.Context, consentURL, state string) (string, error)
}

// openBrowser launches the system browser. A test seam so the loopback flow
// can be exercised without a desktop session.
var openBrowser = func(rawURL string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}

// OpenBrowser launches the system browser at rawURL.
func OpenBrowser(rawURL string) error { return openBrowser(rawURL) }

// LoopbackFlow serves the redirect URI on a loopback listener, opens the
// consent page in the browser, and waits for the provider to redirect back
// with the authorization code. The state parameter is checked before the
// code is accepted.
type LoopbackFlow struct {
	// Addr is the listen address matching the registered redirect URI,
	// e.g. "127.0.0.1:43110".
	Addr string
	// Path is the redirect path, "/callback" by default.
	Path string
	// Announce, when set, is called with the consent URL so the CLI can
	// print it for the user in case the browser did not open.
	Announce func(ctx context.Context, consentURL string)
	// Timeout bounds the wait for the user; zero means 5 minutes.
	Timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

func (f *LoopbackFlow) Obtain(ctx context.Context, consentURL, state string) (string, error) {
	path := f.Path
	if path == "" {
		path = "/callback"
	}
	timeout := f.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	ln, err := net.Listen("tcp", f.Addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", f.Addr, err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res := parseCallback(q, state)
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprint(w, "Authorized. You can close this tab and return to the launcher.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if f.Announce != nil {
		f.Announce(ctx, consentURL)
	}
	if err := openBrowser(consentURL); err != nil && f.Announce == nil {
		return "", fmt.Errorf("open browser: %w", err)
	}

	select {
	case res := <-results:
		return res.code, res.err
	case <-time.After(timeout):
		return "", errors.New("timed out waiting for authorization")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func parseCallback(q url.Values, wantState string) callbackResult {
	if e := q.Get("error"); e != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = e
		}
		return callbackResult{err: fmt.Errorf("authorization denied: %s", desc)}
	}
	if q.Get("state") != wantState {
		return callbackResult{err: errors.New("state mismatch in authorization callback")}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errors.New("authorization callback without code")}
	}
	return callbackResult{code: code}
}
