package endpoints

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmdbkit/cmdbkit/pkg/audit"
	"github.com/cmdbkit/cmdbkit/pkg/server"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
)

// AuthRequest is the token issuance request body
type AuthRequest struct {
	Username string `json:"username"`
	APIKey   string `json:"api_key"`
}

// AuthResponse carries an issued token
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// RegisterAuthEndpoints registers the token issuance endpoint
func RegisterAuthEndpoints(s *server.Server) {
	s.Router.HandleFunc("/auth/token", handleIssueToken(s)).Methods("POST")
}

func handleIssueToken(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		user, err := s.UsersStore.FetchByUsername(req.Username)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				audit.Log(audit.AuthenticateEvent{
					Username:     req.Username,
					ClientIP:     r.RemoteAddr,
					Success:      false,
					ErrorMessage: "unknown user",
				})
				respondWithError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "lookup failed")
			return
		}

		if user.APIKey == "" ||
			subtle.ConstantTimeCompare([]byte(user.APIKey), []byte(req.APIKey)) != 1 {
			audit.Log(audit.AuthenticateEvent{
				Username:     req.Username,
				ClientIP:     r.RemoteAddr,
				Success:      false,
				ErrorMessage: "bad API key",
			})
			respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := s.TokenAuthenticator.Issue(user.ID, s.Config.TokenTTL())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "token issuance failed")
			return
		}

		audit.Log(audit.AuthenticateEvent{
			Username: req.Username,
			ClientIP: r.RemoteAddr,
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, AuthResponse{
			Token:     token,
			ExpiresIn: s.Config.TokenTTLSeconds,
		})
	}
}
