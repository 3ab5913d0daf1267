package server

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmdbkit/cmdbkit/pkg/acl"
	"github.com/cmdbkit/cmdbkit/pkg/config"
	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/job"
	"github.com/cmdbkit/cmdbkit/pkg/schema"
	"github.com/cmdbkit/cmdbkit/pkg/search"
	"github.com/cmdbkit/cmdbkit/pkg/search/index"
	"github.com/cmdbkit/cmdbkit/pkg/server/middleware"
	"github.com/cmdbkit/cmdbkit/pkg/server/store"
	gormstore "github.com/cmdbkit/cmdbkit/pkg/server/store/gorm"
)

type Server struct {
	Router *mux.Router
	DB     *gorm.DB
	Config *config.Config
	Log    *zap.Logger

	// Domain services
	Registry  schema.Registry
	ACL       *acl.Evaluator
	Values    *eav.Store
	Compiler  *search.Compiler
	Indexer   *search.Indexer
	Scheduler *job.Scheduler

	// Read-side stores
	EntitiesStore store.EntitiesStore
	EntriesStore  store.EntriesStore
	JobsStore     store.JobsStore
	UsersStore    store.UsersStore
	HealthStore   store.HealthStore

	TokenAuthenticator *middleware.TokenAuthenticator

	srv *http.Server
}

// NewServer wires the domain services and read-side stores around one
// database handle and one index backend.
func NewServer(db *gorm.DB, idx index.Index, cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    ":" + strconv.Itoa(cfg.Port),
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	registry := schema.NewGormRegistry(db)
	evaluator := acl.NewEvaluator(db)
	values := eav.NewStore(db, registry, evaluator, log)
	usersStore := gormstore.NewUsersStore(db)

	return &Server{
		Router:             router,
		DB:                 db,
		Config:             cfg,
		Log:                log,
		Registry:           registry,
		ACL:                evaluator,
		Values:             values,
		Compiler:           search.NewCompiler(db, values, evaluator, idx, log),
		Indexer:            search.NewIndexer(db, values, idx, log),
		Scheduler:          job.NewScheduler(db, cfg.JobTimeout(), cfg.JobPollInterval(), log),
		EntitiesStore:      gormstore.NewEntitiesStore(db),
		EntriesStore:       gormstore.NewEntriesStore(db),
		JobsStore:          gormstore.NewJobsStore(db),
		UsersStore:         usersStore,
		HealthStore:        gormstore.NewHealthStore(db),
		TokenAuthenticator: middleware.NewTokenAuthenticator([]byte(cfg.TokenSigningKey), usersStore),
		srv:                srv,
	}
}

func (s *Server) Start() error {
	s.Log.Info("server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}
