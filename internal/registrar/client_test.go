package registrar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchdeck/internal/common"
)

var testCreds = Credentials{APIKey: "pk1_x", SecretAPIKey: "sk1_y"}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestPing_SendsKeysInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/json/v3/ping", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "pk1_x", body["apikey"])
		assert.Equal(t, "sk1_y", body["secretapikey"])
		assert.Empty(t, r.Header.Get("Authorization"), "keys travel in the body, not a header")
		fmt.Fprint(w, `{"status":"SUCCESS","yourIp":"203.0.113.5"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, testCreds)
	ip, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", ip)
}

func TestPing_MissingKeys(t *testing.T) {
	c := New("http://unused", Credentials{})
	_, err := c.Ping(context.Background())
	require.ErrorIs(t, err, common.ErrAuthorizationRequired)
}

func TestPing_InvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ERROR","message":"Invalid API key. (002)"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, testCreds)
	_, err := c.Ping(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCheckAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/json/v3/domain/checkDomain/example.dev", r.URL.Path)
		fmt.Fprint(w, `{"status":"SUCCESS","response":{"avail":"yes","price":"10.18","additional":{"renewal":{"price":"14.52"}}}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, testCreds)
	av, err := c.CheckAvailability(context.Background(), "example.dev")
	require.NoError(t, err)
	assert.True(t, av.Available)
	assert.Equal(t, "10.18", av.FirstYear)
	assert.Equal(t, "14.52", av.Price)

	_, err = c.CheckAvailability(context.Background(), "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestListDomains_OffsetPagination(t *testing.T) {
	var starts []float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/json/v3/domain/listAll", r.URL.Path)
		body := decodeBody(t, r)
		start := body["start"].(float64)
		starts = append(starts, start)

		if start == 0 {
			// A full chunk signals another page.
			domains := make([]string, 0, 100)
			for i := 0; i < 100; i++ {
				domains = append(domains, fmt.Sprintf(`{"domain":"d%d.com","status":"ACTIVE","tld":"com"}`, i))
			}
			fmt.Fprintf(w, `{"status":"SUCCESS","domains":[%s]}`, join(domains))
		} else {
			fmt.Fprint(w, `{"status":"SUCCESS","domains":[{"domain":"last.org","status":"ACTIVE","tld":"org"}]}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, testCreds)
	domains, err := c.ListDomains(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 100}, starts)
	require.Len(t, domains, 101)
	assert.Equal(t, "last.org", domains[100].Name)
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func TestDomainDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json/v3/domain/getNs/example.dev":
			fmt.Fprint(w, `{"status":"SUCCESS","ns":["ns1.example.net","ns2.example.net"]}`)
		case "/api/json/v3/domain/getUrlForwarding/example.dev":
			fmt.Fprint(w, `{"status":"SUCCESS","forwards":[{"subdomain":"www","location":"https://example.dev","type":"permanent"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, testCreds)
	d, err := c.DomainDetails(context.Background(), "example.dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"ns1.example.net", "ns2.example.net"}, d.Nameservers)
	require.Len(t, d.Forwards, 1)
	assert.Equal(t, "www", d.Forwards[0].Subdomain)
}
