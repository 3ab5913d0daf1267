package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cmdbkit/cmdbkit/pkg/job"
	"github.com/cmdbkit/cmdbkit/pkg/model"
	"github.com/cmdbkit/cmdbkit/pkg/server"
)

// JobResponse represents a job in the API response
type JobResponse struct {
	Handle    string `json:"handle"`
	Operation string `json:"operation"`
	Status    string `json:"status"`
	TargetID  *uint  `json:"target_id,omitempty"`
	Text      string `json:"text,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ExportRequest is the bulk export request body
type ExportRequest struct {
	EntityIDs []uint `json:"entity_ids"`
}

// RegisterJobsEndpoints registers the job tracking endpoints
func RegisterJobsEndpoints(s *server.Server) {
	jobsRouter := s.Router.PathPrefix("/jobs").Subrouter()
	jobsRouter.Use(s.TokenAuthenticator.Middleware)

	jobsRouter.HandleFunc("", handleListJobs(s)).Methods("GET")
	jobsRouter.HandleFunc("/export", handleCreateExportJob(s)).Methods("POST")
	jobsRouter.HandleFunc("/{handle}", handleShowJob(s)).Methods("GET")
	jobsRouter.HandleFunc("/{handle}", handleCancelJob(s)).Methods("DELETE")
}

func jobResponse(j *model.Job) JobResponse {
	return JobResponse{
		Handle:    j.Handle,
		Operation: j.Operation.String(),
		Status:    j.Status.String(),
		TargetID:  j.TargetID,
		Text:      j.Text,
		CreatedAt: j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: j.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func handleListJobs(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		limit, _ := pagination(r)
		if limit == 0 {
			limit = 50
		}

		jobs, err := s.JobsStore.ListJobs(user.ID, limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job listing failed")
			return
		}

		out := make([]JobResponse, 0, len(jobs))
		for i := range jobs {
			out = append(out, jobResponse(&jobs[i]))
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleShowJob(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		handle := mux.Vars(r)["handle"]

		j, err := s.JobsStore.FetchJob(handle)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job lookup failed")
			return
		}
		if j == nil || j.UserID != user.ID {
			// A foreign handle is indistinguishable from a missing one.
			respondWithError(w, http.StatusNotFound, "job not found")
			return
		}

		respondWithJSON(w, http.StatusOK, jobResponse(j))
	}
}

func handleCancelJob(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		handle := mux.Vars(r)["handle"]

		j, err := s.JobsStore.FetchJob(handle)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job lookup failed")
			return
		}
		if j == nil || j.UserID != user.ID {
			respondWithError(w, http.StatusNotFound, "job not found")
			return
		}

		if err := s.Scheduler.Cancel(handle); err != nil {
			if errors.Is(err, job.ErrJobNotFound) {
				respondWithError(w, http.StatusNotFound, "job not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "cancel failed")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCreateExportJob(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		params := map[string]interface{}{"entity_ids": req.EntityIDs}

		// Identical pending requests collapse onto the running job.
		if dup, err := s.Scheduler.FindDuplicate(user.ID, params); err == nil && dup != nil {
			respondWithJSON(w, http.StatusAccepted, jobResponse(dup))
			return
		}

		j, err := s.Scheduler.NewExport(user.ID, "", params)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "job admission failed")
			return
		}

		respondWithJSON(w, http.StatusAccepted, jobResponse(j))
	}
}
