package shortcuts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/storage/cache"
)

const maxNamespaceBody = 1 << 20

// Service loads shortcut namespaces and resolves queries against them.
type Service struct {
	baseURL    string // namespace files live at baseURL/<namespace>.yml
	namespaces []string
	hc         *http.Client
	cache      cache.Store
	log        logging.Logger
}

type Option func(*Service)

func WithHTTPClient(hc *http.Client) Option { return func(s *Service) { s.hc = hc } }
func WithLogger(l logging.Logger) Option    { return func(s *Service) { s.log = l } }

// New returns a resolver over the given namespaces, in priority order:
// a shortcut in a later namespace shadows the same key in an earlier one.
func New(baseURL string, namespaces []string, kv cache.Store, opts ...Option) *Service {
	s := &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		namespaces: namespaces,
		hc:         &http.Client{Timeout: 15 * time.Second},
		cache:      kv,
		log:        logging.NewDefault(logging.DefaultLevel),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// load returns one namespace's shortcuts. The raw YAML is cached so
// resolution keeps working offline; a malformed file is logged and
// treated as empty rather than failing the whole resolution.
func (s *Service) load(ctx context.Context, namespace string) map[string]Shortcut {
	cacheKey := "shortcuts:ns:" + namespace

	data, err := s.fetchRemote(ctx, namespace)
	if err != nil {
		s.log.Warn(ctx, "fetching shortcut namespace, trying cache", "namespace", namespace, "error", err)
		data, err = s.cache.Get(ctx, cacheKey)
		if err != nil || data == nil {
			return map[string]Shortcut{}
		}
	} else {
		if err := s.cache.Set(ctx, cacheKey, data); err != nil {
			s.log.Warn(ctx, "caching shortcut namespace", "namespace", namespace, "error", err)
		}
	}

	parsed, err := parseNamespace(namespace, data)
	if err != nil {
		s.log.Warn(ctx, "skipping malformed shortcut namespace", "namespace", namespace, "error", err)
		return map[string]Shortcut{}
	}
	return parsed
}

func (s *Service) fetchRemote(ctx context.Context, namespace string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+namespace+".yml", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("namespace %s: unexpected status %d", namespace, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxNamespaceBody))
}

// table merges all namespaces, later ones taking precedence.
func (s *Service) table(ctx context.Context) map[string]Shortcut {
	merged := map[string]Shortcut{}
	for _, ns := range s.namespaces {
		for k, sc := range s.load(ctx, ns) {
			merged[k] = sc
		}
	}
	return merged
}

// Resolve parses a query of the form "keyword arg1, arg2" and returns
// the expanded target URL. Arguments are comma-separated so a single
// argument may contain spaces.
func (s *Service) Resolve(ctx context.Context, query string) (string, *Shortcut, error) {
	keyword, args := splitQuery(query)
	if keyword == "" {
		return "", nil, fmt.Errorf("empty query: %w", common.ErrValidation)
	}

	table := s.table(ctx)
	sc, ok := table[key(keyword, len(args))]
	if !ok && len(args) > 1 {
		// Fall back to the one-argument form with the args rejoined,
		// for shortcuts that take a free-text argument.
		if sc, ok = table[key(keyword, 1)]; ok {
			args = []string{strings.Join(args, ", ")}
		}
	}
	if !ok {
		return "", nil, fmt.Errorf("shortcut %q with %d argument(s): %w", keyword, len(args), common.ErrNotFound)
	}
	return expand(sc.URL, args), &sc, nil
}

// List returns every merged shortcut, for browsing.
func (s *Service) List(ctx context.Context) []Shortcut {
	table := s.table(ctx)
	out := make([]Shortcut, 0, len(table))
	for _, sc := range table {
		out = append(out, sc)
	}
	return out
}

func splitQuery(q string) (keyword string, args []string) {
	q = strings.TrimSpace(q)
	keyword, rest, found := strings.Cut(q, " ")
	if !found {
		return keyword, nil
	}
	for _, a := range strings.Split(rest, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			args = append(args, a)
		}
	}
	return keyword, args
}
