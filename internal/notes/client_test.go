package notes

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

type fakeTokens struct{ cleared int }

func (f *fakeTokens) Authorize(context.Context, string) (string, error) { return "app-key", nil }
func (f *fakeTokens) Clear(context.Context, string) error               { f.cleared++; return nil }

func TestSearch_OffsetPagination(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/spaces/sp-1/search", r.URL.Path)
		assert.Equal(t, "Bearer app-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "meeting", body["query"])

		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)
		if offset == "0" {
			fmt.Fprint(w, `{"data":[{"id":"n-1","name":"Meeting notes","snippet":"agenda"}],
				"pagination":{"total":2,"offset":0,"limit":50,"has_more":true}}`)
		} else {
			fmt.Fprint(w, `{"data":[{"id":"n-2","name":"Meeting follow-up"}],
				"pagination":{"total":2,"offset":50,"limit":50,"has_more":false}}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{})
	notes, err := c.Search(context.Background(), "sp-1", "meeting")
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "50"}, offsets)
	require.Len(t, notes, 2)
	assert.Equal(t, "Meeting notes", notes[0].Name)

	_, err = c.Search(context.Background(), "", "q")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestHasMoreFallsBackToTotal(t *testing.T) {
	assert.True(t, hasMore(true, 0, 10, 0))
	assert.True(t, hasMore(false, 0, 50, 60), "older backends only report a total")
	assert.False(t, hasMore(false, 50, 10, 60))
	assert.False(t, hasMore(false, 0, 0, 0))
}

func TestListSpaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/spaces", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"sp-1","name":"Personal"},{"id":"sp-2","name":"Work"}],
			"pagination":{"total":2,"offset":0,"limit":50,"has_more":false}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{})
	spaces, err := c.ListSpaces(context.Background())
	require.NoError(t, err)
	require.Len(t, spaces, 2)
	assert.Equal(t, "Work", spaces[1].Name)
}

func TestCreateNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/spaces/sp-1/objects", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Groceries", body["name"])
		assert.Equal(t, "note", body["type_key"])
		fmt.Fprint(w, `{"object":{"id":"n-9","name":"Groceries","type":{"key":"note","name":"Note"}}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeTokens{})
	n, err := c.CreateNote(context.Background(), NewNote{SpaceID: "sp-1", Title: "Groceries", Body: "- milk"})
	require.NoError(t, err)
	assert.Equal(t, "n-9", n.ID)

	_, err = c.CreateNote(context.Background(), NewNote{SpaceID: "sp-1"})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestAuthDeniedClearsAppKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"unauthorized","message":"invalid app key"}}`)
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	c := New(srv.URL, tokens)
	_, err := c.ListSpaces(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, tokens.cleared)
}
