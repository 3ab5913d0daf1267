package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/cmdbkit/cmdbkit/pkg/search"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
	"github.com/cmdbkit/cmdbkit/pkg/server"
)

// SearchRequest is the search request body
type SearchRequest struct {
	EntityIDs    []uint      `json:"entity_ids"`
	EntryName    string      `json:"entry_name"`
	Hints        []HintParam `json:"attrinfo"`
	HintReferral *string     `json:"referral_name"`
	Link         string      `json:"cond_link"`
	Limit        int         `json:"limit"`
}

// HintParam names an attribute to search on
type HintParam struct {
	Name    string `json:"name"`
	Keyword string `json:"keyword"`
}

// SearchResponse is the search result
type SearchResponse struct {
	TotalCount int         `json:"total_count"`
	Rows       []SearchRow `json:"results"`
}

// SearchRow is one reconciled search hit
type SearchRow struct {
	EntryID   uint                            `json:"entry_id"`
	EntryName string                          `json:"entry_name"`
	Entity    index.DocumentEntity            `json:"entity"`
	Attrs     map[string][]index.DocumentAttr `json:"attrs"`
	Referrals []search.Referral               `json:"referrals,omitempty"`
}

// RegisterSearchEndpoints registers the search endpoint
func RegisterSearchEndpoints(s *server.Server) {
	searchRouter := s.Router.PathPrefix("/search").Subrouter()
	searchRouter.Use(s.TokenAuthenticator.Middleware)

	searchRouter.HandleFunc("", handleSearch(s)).Methods("POST")
}

func handleSearch(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		principal, err := s.ACL.LoadPrincipal(user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "principal lookup failed")
			return
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		link := index.LinkOr
		if req.Link == "and" {
			link = index.LinkAnd
		}

		limit := req.Limit
		if limit <= 0 || limit > s.Config.SearchResultLimit {
			limit = s.Config.SearchResultLimit
		}

		hints := make([]search.Hint, 0, len(req.Hints))
		for _, hint := range req.Hints {
			hints = append(hints, search.Hint{Name: hint.Name, Keyword: hint.Keyword})
		}

		result, err := s.Compiler.Search(principal, req.EntityIDs, hints, search.Options{
			EntryName:    req.EntryName,
			HintReferral: req.HintReferral,
			Link:         link,
			Limit:        limit,
		})
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "search failed")
			return
		}

		resp := SearchResponse{
			TotalCount: result.TotalCount,
			Rows:       make([]SearchRow, 0, len(result.Rows)),
		}
		for _, row := range result.Rows {
			resp.Rows = append(resp.Rows, SearchRow{
				EntryID:   row.EntryID,
				EntryName: row.EntryName,
				Entity:    row.Entity,
				Attrs:     row.Attrs,
				Referrals: row.Referrals,
			})
		}

		respondWithJSON(w, http.StatusOK, resp)
	}
}
