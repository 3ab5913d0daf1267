package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/audit"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
	"github.com/cmdbkit/cmdbkit/pkg/server"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

// EntryResponse represents an entry with its decoded attribute values
type EntryResponse struct {
	ID       uint           `json:"id"`
	Name     string         `json:"name"`
	EntityID uint           `json:"entity_id"`
	Attrs    []AttrResponse `json:"attrs"`
}

// AttrResponse represents one attribute of an entry
type AttrResponse struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// EntryListResponse is the paginated entry listing
type EntryListResponse struct {
	TotalCount int64          `json:"total_count"`
	Entries    []EntrySummary `json:"entries"`
}

// EntrySummary is one row of the entry listing
type EntrySummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// HistoryResponse represents one version pair of an attribute's history
type HistoryResponse struct {
	Value     interface{} `json:"value"`
	Previous  interface{} `json:"previous_value"`
	CreatedBy uint        `json:"created_by"`
	CreatedAt string      `json:"created_at"`
}

// ReferralsResponse lists the entries referring to an entry
type ReferralsResponse struct {
	TotalCount int            `json:"total_count"`
	Entries    []EntrySummary `json:"entries"`
}

// ValueRequest is the attribute value write request body
type ValueRequest struct {
	Value interface{} `json:"value"`
}

// RegisterEntriesEndpoints registers the entry endpoints
func RegisterEntriesEndpoints(s *server.Server) {
	entriesRouter := s.Router.PathPrefix("/entries").Subrouter()
	entriesRouter.Use(s.TokenAuthenticator.Middleware)

	entriesRouter.HandleFunc("/{id:[0-9]+}", handleShowEntry(s)).Methods("GET")
	entriesRouter.HandleFunc("/{id:[0-9]+}/referrals", handleEntryReferrals(s)).Methods("GET")
	entriesRouter.HandleFunc("/{id:[0-9]+}/attrs/{name}", handleWriteAttrValue(s)).Methods("PUT")
	entriesRouter.HandleFunc("/{id:[0-9]+}/attrs/{name}/history", handleAttrHistory(s)).Methods("GET")
	entriesRouter.HandleFunc("/{id:[0-9]+}/attrs/{name}/rendered", handleRenderedAttr(s)).Methods("GET")
}

func handleListEntries(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		principal, err := s.ACL.LoadPrincipal(user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "principal lookup failed")
			return
		}

		entity, ok := fetchEntity(s, w, r)
		if !ok {
			return
		}
		if !s.ACL.HasPermission(principal, *entity, model.LevelReadable) {
			respondWithError(w, http.StatusForbidden, "permission denied")
			return
		}

		search := r.URL.Query().Get("search")
		limit, offset := pagination(r)

		entries, err := s.EntriesStore.ListEntries(entity.ID, search, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "entry listing failed")
			return
		}
		count, err := s.EntriesStore.CountEntries(entity.ID, search)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "entry listing failed")
			return
		}

		out := make([]EntrySummary, 0, len(entries))
		for i := range entries {
			if !s.ACL.HasPermission(principal, entries[i], model.LevelReadable) {
				continue
			}
			out = append(out, EntrySummary{ID: entries[i].ID, Name: entries[i].Name})
		}

		respondWithJSON(w, http.StatusOK, EntryListResponse{TotalCount: count, Entries: out})
	}
}

func handleShowEntry(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, entry, ok := loadEntryForRead(s, w, r)
		if !ok {
			return
		}

		// Materialize attributes added to the schema after this entry was
		// created, so the response always reflects the current schema.
		if err := s.Values.ComplementAttrs(principal, entry); err != nil {
			respondWithError(w, http.StatusInternalServerError, "attribute complement failed")
			return
		}

		attrs, err := s.EntriesStore.ListAttributes(entry.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "attribute listing failed")
			return
		}

		resp := EntryResponse{
			ID:       entry.ID,
			Name:     entry.Name,
			EntityID: entry.SchemaID,
			Attrs:    make([]AttrResponse, 0, len(attrs)),
		}

		for i := range attrs {
			if !s.ACL.HasPermission(principal, attrs[i], model.LevelReadable) {
				continue
			}

			latest, err := s.Values.GetLatest(principal.UserID, &attrs[i])
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, "value lookup failed")
				return
			}
			decoded, err := s.Values.Decode(latest)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, "value decode failed")
				return
			}

			resp.Attrs = append(resp.Attrs, AttrResponse{
				ID:    attrs[i].ID,
				Name:  attrs[i].Name,
				Type:  latest.DataType.String(),
				Value: renderValue(decoded),
			})
		}

		respondWithJSON(w, http.StatusOK, resp)
	}
}

func handleEntryReferrals(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, entry, ok := loadEntryForRead(s, w, r)
		if !ok {
			return
		}

		maxCount := 0
		if maxStr := r.URL.Query().Get("max"); maxStr != "" {
			if m, err := strconv.Atoi(maxStr); err == nil && m > 0 {
				maxCount = m
			}
		}

		referring, total, err := s.Values.ReferredEntries(entry.ID, maxCount)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "referral lookup failed")
			return
		}

		out := ReferralsResponse{TotalCount: total, Entries: make([]EntrySummary, 0, len(referring))}
		for i := range referring {
			out.Entries = append(out.Entries, EntrySummary{ID: referring[i].ID, Name: referring[i].Name})
		}

		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleWriteAttrValue(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, entry, attr, ok := loadAttrForWrite(s, w, r)
		if !ok {
			return
		}

		var req ValueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		def, err := s.Registry.GetAttributeDef(attr.SchemaID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "schema lookup failed")
			return
		}

		value, err := decodeJSONValue(def.Type, req.Value)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		updated, err := s.Values.IsUpdated(attr, value)
		if err != nil {
			writeValueError(w, err)
			return
		}
		if !updated {
			// Identical to the current value: no new version is written.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		created, err := s.Values.AddValue(principal.UserID, attr, value)
		if err != nil {
			audit.Log(audit.UpdateEvent{
				UserID:       principal.UserID,
				EntryID:      entry.ID,
				AttrName:     attr.Name,
				Success:      false,
				ErrorMessage: err.Error(),
			})
			writeValueError(w, err)
			return
		}
		audit.Log(audit.UpdateEvent{
			UserID:   principal.UserID,
			EntryID:  entry.ID,
			AttrName: attr.Name,
			Success:  true,
		})

		// Refresh the search document so the write is findable immediately.
		// The value is persisted at this point; a failed refresh still fails
		// the request so the caller knows the index is behind.
		if err := s.Indexer.RegisterEntry(principal.UserID, entry.ID); err != nil {
			s.Log.Error("index refresh failed after value write", zap.Uint("entry_id", entry.ID), zap.Error(err))
			writeIndexError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{"value_id": created.ID})
	}
}

func handleAttrHistory(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, attr, ok := loadAttrForRead(s, w, r)
		if !ok {
			return
		}

		limit, offset := pagination(r)
		if limit == 0 {
			limit = 20
		}

		history, err := s.Values.GetHistory(attr, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "history lookup failed")
			return
		}

		out := make([]HistoryResponse, 0, len(history))
		for _, entry := range history {
			item := HistoryResponse{
				CreatedBy: entry.Value.CreatedByID,
				CreatedAt: entry.Value.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
			if decoded, err := s.Values.Decode(entry.Value); err == nil {
				item.Value = renderValue(decoded)
			}
			if entry.Previous != nil {
				if decoded, err := s.Values.Decode(entry.Previous); err == nil {
					item.Previous = renderValue(decoded)
				}
			}
			out = append(out, item)
		}

		respondWithJSON(w, http.StatusOK, out)
	}
}

// handleRenderedAttr renders a text attribute's markdown as HTML.
func handleRenderedAttr(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _, attr, ok := loadAttrForRead(s, w, r)
		if !ok {
			return
		}

		latest, err := s.Values.GetLatest(principal.UserID, attr)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "value lookup failed")
			return
		}

		if !latest.DataType.Element().IsStringLike() {
			respondWithError(w, http.StatusBadRequest, "attribute is not text")
			return
		}

		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(latest.Value), &buf); err != nil {
			respondWithError(w, http.StatusInternalServerError, "rendering failed")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

func loadEntryForRead(s *server.Server, w http.ResponseWriter, r *http.Request) (*acl.Principal, *model.Entry, bool) {
	user := currentUser(r)
	principal, err := s.ACL.LoadPrincipal(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "principal lookup failed")
		return nil, nil, false
	}

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid entry id")
		return nil, nil, false
	}

	entry, err := s.EntriesStore.FetchEntry(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			respondWithError(w, http.StatusNotFound, "entry not found")
			return nil, nil, false
		}
		respondWithError(w, http.StatusInternalServerError, "entry lookup failed")
		return nil, nil, false
	}

	if !s.ACL.HasPermission(principal, *entry, model.LevelReadable) {
		respondWithError(w, http.StatusForbidden, "permission denied")
		return nil, nil, false
	}
	return principal, entry, true
}

func loadAttr(s *server.Server, w http.ResponseWriter, r *http.Request, required model.PermissionLevel) (*acl.Principal, *model.Entry, *model.Attribute, bool) {
	principal, entry, ok := loadEntryForRead(s, w, r)
	if !ok {
		return nil, nil, nil, false
	}

	// Late-added schema attributes may not have rows yet.
	if err := s.Values.ComplementAttrs(principal, entry); err != nil {
		respondWithError(w, http.StatusInternalServerError, "attribute complement failed")
		return nil, nil, nil, false
	}

	name := mux.Vars(r)["name"]
	attrs, err := s.EntriesStore.ListAttributes(entry.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "attribute listing failed")
		return nil, nil, nil, false
	}

	for i := range attrs {
		if attrs[i].Name != name {
			continue
		}
		if !s.ACL.HasPermission(principal, attrs[i], required) {
			respondWithError(w, http.StatusForbidden, "permission denied")
			return nil, nil, nil, false
		}
		return principal, entry, &attrs[i], true
	}

	respondWithError(w, http.StatusNotFound, "attribute not found")
	return nil, nil, nil, false
}

func loadAttrForRead(s *server.Server, w http.ResponseWriter, r *http.Request) (*acl.Principal, *model.Entry, *model.Attribute, bool) {
	return loadAttr(s, w, r, model.LevelReadable)
}

func loadAttrForWrite(s *server.Server, w http.ResponseWriter, r *http.Request) (*acl.Principal, *model.Entry, *model.Attribute, bool) {
	return loadAttr(s, w, r, model.LevelWritable)
}

// writeIndexError maps an index refresh failure onto a response. An
// unreachable index is a retryable condition.
func writeIndexError(w http.ResponseWriter, err error) {
	if errors.Is(err, index.ErrIndexUnavailable) {
		respondWithError(w, http.StatusServiceUnavailable, "search index unavailable")
		return
	}
	respondWithError(w, http.StatusInternalServerError, "index refresh failed")
}

func writeValueError(w http.ResponseWriter, err error) {
	var invalid *eav.InvalidValueError
	var tooLarge *eav.ValueTooLargeError
	switch {
	case errors.As(err, &invalid), errors.As(err, &tooLarge):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, eav.ErrTargetNotFound):
		respondWithError(w, http.StatusNotFound, "attribute not found")
	default:
		respondWithError(w, http.StatusInternalServerError, "value write failed")
	}
}
