// Package server provides the HTTP server for the CMDB API.
//
// This package implements the core HTTP server that handles all CMDB REST API
// requests. It uses gorilla/mux for routing and provides middleware for
// authentication and request handling.
//
// # Server Setup
//
//	srv := server.NewServer(db, idx, cfg, logger)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds the router, database handle, the domain services
// (value store, ACL evaluator, search compiler, indexer, job scheduler) and
// the read-side stores the endpoints consume.
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers the CMDB API including:
//
//   - /auth/token - Token issuance
//   - /entities and /entities/{id}/attrs - Schema browsing
//   - /entities/{id}/entries - Entry listing
//   - /entries/{id} - Entry detail with decoded attribute values
//   - /entries/{id}/attrs/{name}/... - Value writes, history, referrals
//   - /search - Cross-entity attribute search
//   - /jobs - Asynchronous job tracking
//   - /status and /metrics - Health and telemetry
package server
