package endpoints

import (
	"github.com/cmdbkit/cmdbkit/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterAuthEndpoints(srv)
	RegisterEntitiesEndpoints(srv)
	RegisterEntriesEndpoints(srv)
	RegisterMutationEndpoints(srv)
	RegisterSearchEndpoints(srv)
	RegisterJobsEndpoints(srv)
	RegisterStatusEndpoints(srv)
}
