package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server"
)

// EntityResponse represents an entity in the API response
type EntityResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Note     string `json:"note,omitempty"`
	IsPublic bool   `json:"is_public"`
}

// EntityAttrResponse represents an entity attribute definition
type EntityAttrResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	IsMandatory bool   `json:"is_mandatory"`
	Index       int    `json:"index"`
	ReferralIDs []uint `json:"referral_entity_ids,omitempty"`
}

// EntityListResponse is the paginated entity listing
type EntityListResponse struct {
	TotalCount int64            `json:"total_count"`
	Entities   []EntityResponse `json:"entities"`
}

// RegisterEntitiesEndpoints registers the entity schema endpoints
func RegisterEntitiesEndpoints(s *server.Server) {
	entitiesRouter := s.Router.PathPrefix("/entities").Subrouter()
	entitiesRouter.Use(s.TokenAuthenticator.Middleware)

	entitiesRouter.HandleFunc("", handleListEntities(s)).Methods("GET")
	entitiesRouter.HandleFunc("/{id:[0-9]+}", handleShowEntity(s)).Methods("GET")
	entitiesRouter.HandleFunc("/{id:[0-9]+}/attrs", handleListEntityAttrs(s)).Methods("GET")
	entitiesRouter.HandleFunc("/{id:[0-9]+}/entries", handleListEntries(s)).Methods("GET")
}

func handleListEntities(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		principal, err := s.ACL.LoadPrincipal(user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "principal lookup failed")
			return
		}

		search := r.URL.Query().Get("search")
		limit, offset := pagination(r)

		entities, err := s.EntitiesStore.ListEntities(search, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "entity listing failed")
			return
		}
		count, err := s.EntitiesStore.CountEntities(search)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "entity listing failed")
			return
		}

		out := make([]EntityResponse, 0, len(entities))
		for i := range entities {
			if !s.ACL.HasPermission(principal, entities[i], model.LevelReadable) {
				continue
			}
			out = append(out, EntityResponse{
				ID:       entities[i].ID,
				Name:     entities[i].Name,
				Note:     entities[i].Note,
				IsPublic: entities[i].IsPublic,
			})
		}

		respondWithJSON(w, http.StatusOK, EntityListResponse{TotalCount: count, Entities: out})
	}
}

func handleShowEntity(s *server.Server) http.HandlerFunc {
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

		respondWithJSON(w, http.StatusOK, EntityResponse{
			ID:       entity.ID,
			Name:     entity.Name,
			Note:     entity.Note,
			IsPublic: entity.IsPublic,
		})
	}
}

func handleListEntityAttrs(s *server.Server) http.HandlerFunc {
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

		attrs, err := s.EntitiesStore.ListEntityAttrs(entity.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "attribute listing failed")
			return
		}

		out := make([]EntityAttrResponse, 0, len(attrs))
		for i := range attrs {
			if !s.ACL.HasPermission(principal, attrs[i], model.LevelReadable) {
				continue
			}

			resp := EntityAttrResponse{
				ID:          attrs[i].ID,
				Name:        attrs[i].Name,
				Type:        attrs[i].Type.String(),
				IsMandatory: attrs[i].IsMandatory,
				Index:       attrs[i].Index,
			}
			if attrs[i].Type.IsObject() {
				referralIDs, err := s.EntitiesStore.ListReferralEntityIDs(attrs[i].ID)
				if err != nil {
					respondWithError(w, http.StatusInternalServerError, "attribute listing failed")
					return
				}
				resp.ReferralIDs = referralIDs
			}
			out = append(out, resp)
		}

		respondWithJSON(w, http.StatusOK, out)
	}
}

func fetchEntity(s *server.Server, w http.ResponseWriter, r *http.Request) (*model.Entity, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid entity id")
		return nil, false
	}

	entity, err := s.EntitiesStore.FetchEntity(uint(id))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "entity lookup failed")
		return nil, false
	}
	if entity == nil {
		respondWithError(w, http.StatusNotFound, "entity not found")
		return nil, false
	}
	return entity, true
}

func pagination(r *http.Request) (limit, offset int) {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
