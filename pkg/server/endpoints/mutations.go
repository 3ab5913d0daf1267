package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server"
)

// CreateEntryRequest is the entry creation request body
type CreateEntryRequest struct {
	Name string `json:"name"`
}

// CopyEntryRequest is the entry copy request body
type CopyEntryRequest struct {
	Names []string `json:"names"`
}

// RegisterMutationEndpoints registers the endpoints that admit mutation jobs.
// The mutations themselves run on the worker; these handlers only validate
// and enqueue.
func RegisterMutationEndpoints(s *server.Server) {
	entitiesRouter := s.Router.PathPrefix("/entities").Subrouter()
	entitiesRouter.Use(s.TokenAuthenticator.Middleware)
	entitiesRouter.HandleFunc("/{id:[0-9]+}/entries", handleCreateEntryJob(s)).Methods("POST")

	entriesRouter := s.Router.PathPrefix("/entries").Subrouter()
	entriesRouter.Use(s.TokenAuthenticator.Middleware)
	entriesRouter.HandleFunc("/{id:[0-9]+}", handleDeleteEntryJob(s)).Methods("DELETE")
	entriesRouter.HandleFunc("/{id:[0-9]+}/copy", handleCopyEntryJob(s)).Methods("POST")
}

func handleCreateEntryJob(s *server.Server) http.HandlerFunc {
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
		if !s.ACL.HasPermission(principal, *entity, model.LevelWritable) {
			respondWithError(w, http.StatusForbidden, "permission denied")
			return
		}

		var req CreateEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respondWithError(w, http.StatusBadRequest, "name is required")
			return
		}

		target := model.Ref{Kind: model.KindEntity, ID: entity.ID}
		params := map[string]interface{}{"entity_id": entity.ID, "name": req.Name}
		j, err := s.Scheduler.NewCreate(user.ID, target, req.Name, params)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job admission failed")
			return
		}

		respondWithJSON(w, http.StatusAccepted, jobResponse(j))
	}
}

func handleDeleteEntryJob(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		principal, entry, ok := loadEntryForRead(s, w, r)
		if !ok {
			return
		}
		if !s.ACL.HasPermission(principal, *entry, model.LevelFull) {
			respondWithError(w, http.StatusForbidden, "permission denied")
			return
		}

		target := model.Ref{Kind: model.KindEntry, ID: entry.ID}
		params := map[string]interface{}{"entry_id": entry.ID}
		j, err := s.Scheduler.NewDelete(user.ID, target, entry.Name, params)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job admission failed")
			return
		}

		respondWithJSON(w, http.StatusAccepted, jobResponse(j))
	}
}

func handleCopyEntryJob(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		_, entry, ok := loadEntryForRead(s, w, r)
		if !ok {
			return
		}

		var req CopyEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Names) == 0 {
			respondWithError(w, http.StatusBadRequest, "names are required")
			return
		}

		target := model.Ref{Kind: model.KindEntry, ID: entry.ID}
		names := make([]interface{}, 0, len(req.Names))
		for _, name := range req.Names {
			names = append(names, name)
		}
		params := map[string]interface{}{"entry_id": entry.ID, "names": names}
		j, err := s.Scheduler.NewCopy(user.ID, target, entry.Name, params)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job admission failed")
			return
		}

		respondWithJSON(w, http.StatusAccepted, jobResponse(j))
	}
}
