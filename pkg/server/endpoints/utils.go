package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server/middleware"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// currentUser returns the authenticated user attached by the token
// middleware. Handlers behind the middleware can assume it is present.
func currentUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(middleware.UserContextKey).(*model.User)
	return user
}
