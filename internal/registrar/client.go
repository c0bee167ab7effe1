// Package registrar is a typed client for the domain registrar API.
// The registrar authenticates every call with an API key pair carried
// in the POST body rather than a header, and paginates listings by
// offset.
package registrar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/launchdeck/internal/common"
	"github.com/dmitrijs2005/launchdeck/internal/httpx"
	"github.com/dmitrijs2005/launchdeck/internal/logging"
	"github.com/dmitrijs2005/launchdeck/internal/pager"
)

const defaultPageSize = 100

// Credentials is the registrar API key pair.
type Credentials struct {
	APIKey       string
	SecretAPIKey string
}

func (c Credentials) valid() bool { return c.APIKey != "" && c.SecretAPIKey != "" }

// Domain is a registered domain on the account.
type Domain struct {
	Name         string `json:"domain"`
	Status       string `json:"status"`
	TLD          string `json:"tld"`
	ExpireDate   string `json:"expireDate"`
	AutoRenew    int    `json:"autoRenew"`
	WhoisPrivacy int    `json:"whoisPrivacy"`
}

// Availability is the result of a domain availability check.
type Availability struct {
	Domain    string
	Available bool
	Price     string
	FirstYear string
}

type statusError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Client struct {
	base  string
	creds Credentials
	hc    *http.Client
	log   logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }
func WithLogger(l logging.Logger) Option    { return func(c *Client) { c.log = l } }

func New(base string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		base:  base,
		creds: creds,
		hc:    &http.Client{Timeout: 30 * time.Second},
		log:   logging.NewDefault(logging.DefaultLevel),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// post sends an authenticated POST. body may be nil for key-only calls.
// The registrar reports failures as HTTP 200 with status "ERROR".
func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	if !c.creds.valid() {
		return fmt.Errorf("registrar api keys are not configured: %w", common.ErrAuthorizationRequired)
	}
	if body == nil {
		body = map[string]any{}
	}
	body["apikey"] = c.creds.APIKey
	body["secretapikey"] = c.creds.SecretAPIKey

	req, err := httpx.NewJSONRequest(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return err
	}
	if err := httpx.DoJSON(c.hc, req, out); err != nil {
		return err
	}
	return nil
}

// Ping verifies the key pair and returns the caller's public IP.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var out struct {
		statusError
		YourIP string `json:"yourIp"`
	}
	if err := c.post(ctx, "/api/json/v3/ping", nil, &out); err != nil {
		return "", err
	}
	if err := out.check(); err != nil {
		return "", err
	}
	return out.YourIP, nil
}

// CheckAvailability checks whether a domain can be registered.
func (c *Client) CheckAvailability(ctx context.Context, domain string) (*Availability, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain is required: %w", common.ErrValidation)
	}
	var out struct {
		statusError
		Response struct {
			Avail      string `json:"avail"` // "yes" or "no"
			Price      string `json:"price"`
			Premium    string `json:"premium"`
			Additional struct {
				Renewal struct {
					Price string `json:"price"`
				} `json:"renewal"`
			} `json:"additional"`
		} `json:"response"`
	}
	if err := c.post(ctx, "/api/json/v3/domain/checkDomain/"+domain, nil, &out); err != nil {
		return nil, err
	}
	if err := out.check(); err != nil {
		return nil, err
	}
	return &Availability{
		Domain:    domain,
		Available: out.Response.Avail == "yes",
		Price:     out.Response.Additional.Renewal.Price,
		FirstYear: out.Response.Price,
	}, nil
}

// ListDomains returns every domain on the account, walking the
// registrar's offset pagination.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	return pager.FetchAll(ctx, defaultPageSize, func(ctx context.Context, page, size int) (pager.Page[Domain], error) {
		var out struct {
			statusError
			Domains []Domain `json:"domains"`
		}
		body := map[string]any{"start": (page - 1) * size, "includeLabels": "no"}
		if err := c.post(ctx, "/api/json/v3/domain/listAll", body, &out); err != nil {
			return pager.Page[Domain]{}, err
		}
		if err := out.check(); err != nil {
			return pager.Page[Domain]{}, err
		}
		// A full chunk means another page may follow.
		return pager.Page[Domain]{Items: out.Domains, HasMore: len(out.Domains) == size}, nil
	})
}

// DomainDetails returns the nameservers and URL forwards of a domain.
func (c *Client) DomainDetails(ctx context.Context, domain string) (*Details, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain is required: %w", common.ErrValidation)
	}
	var ns struct {
		statusError
		NS []string `json:"ns"`
	}
	if err := c.post(ctx, "/api/json/v3/domain/getNs/"+domain, nil, &ns); err != nil {
		return nil, err
	}
	if err := ns.check(); err != nil {
		return nil, err
	}

	var fwd struct {
		statusError
		Forwards []Forward `json:"forwards"`
	}
	if err := c.post(ctx, "/api/json/v3/domain/getUrlForwarding/"+domain, nil, &fwd); err != nil {
		return nil, err
	}
	if err := fwd.check(); err != nil {
		return nil, err
	}
	return &Details{Domain: domain, Nameservers: ns.NS, Forwards: fwd.Forwards}, nil
}

// Details is the per-domain drill-down.
type Details struct {
	Domain      string
	Nameservers []string
	Forwards    []Forward
}

// Forward is a URL forwarding rule on a domain.
type Forward struct {
	Subdomain string `json:"subdomain"`
	Location  string `json:"location"`
	Type      string `json:"type"`
}

// check maps the registrar's in-band status field to an error.
func (e statusError) check() error {
	if e.Status == "ERROR" {
		if e.Message == "Invalid API key. (002)" || e.Message == "All API requests require your API key." {
			return fmt.Errorf("%s: %w", e.Message, common.ErrUnauthorized)
		}
		return &httpx.APIError{Status: http.StatusOK, Code: "ERROR", Message: e.Message}
	}
	return nil
}
