package index

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElasticRegister(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	var gotBody Document
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	e := NewElastic(srv.URL, "entry", 100)
	doc := serverDoc(10, "web-01", "web-01.example.com")
	require.NoError(t, e.Register(5, doc))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/entry/_doc/5", gotPath)
	// Writes must be immediately searchable.
	assert.Equal(t, "refresh=true", gotQuery)
	assert.Equal(t, "web-01", gotBody.Name)
}

func TestElasticRegisterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewElastic(srv.URL, "entry", 100)
	assert.Error(t, e.Register(5, serverDoc(10, "web-01", "x")))
}

func TestElasticDeleteAbsentDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewElastic(srv.URL, "entry", 100)
	assert.NoError(t, e.Delete(99))
}

func TestElasticSearch(t *testing.T) {
	var gotRequest map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/entry/_search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		resp := map[string]interface{}{
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": 2},
				"hits": []interface{}{
					map[string]interface{}{"_id": "1", "_source": serverDoc(10, "db-01", "x")},
					map[string]interface{}{"_id": "2", "_source": serverDoc(10, "web-01", "y")},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewElastic(srv.URL, "entry", 50)
	res, err := e.Search(&Query{
		EntityIDs: []uint{10},
		Attrs: []AttrFilter{{
			Name:         "hostname",
			Alternatives: [][]Term{{{Kind: TermSubstring, Text: "web"}}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, uint(1), res.Hits[0].EntryID)
	assert.Equal(t, "db-01", res.Hits[0].Doc.Name)

	// The request carries the configured result cap.
	assert.Equal(t, float64(50), gotRequest["size"])
}

func TestElasticSearchMissingIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewElastic(srv.URL, "entry", 100)
	res, err := e.Search(&Query{EntityIDs: []uint{10}})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestElasticUnreachable(t *testing.T) {
	e := NewElastic("http://127.0.0.1:1", "entry", 100)
	_, err := e.Search(&Query{EntityIDs: []uint{10}})
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestEscapeRegexp(t *testing.T) {
	assert.Equal(t, `web-01\.example`, escapeRegexp("web-01.example"))
	assert.Equal(t, `a\*b\?c`, escapeRegexp("a*b?c"))
	assert.Equal(t, "plain", escapeRegexp("plain"))
}
