package convert

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-codegen/api/pkg/n8n"
)

// WorkflowRepo abstracts workflow persistence for testability.
type WorkflowRepo interface {
	Create(ctx context.Context, name string, def *n8n.Workflow) (*WorkflowRecord, error)
	Get(ctx context.Context, id string) (*WorkflowRecord, error)
	SaveConversion(ctx context.Context, result *ConversionResult) error
}

// Service wires the repository to the conversion HTTP handlers.
type Service struct {
	repo WorkflowRepo
}

// NewService creates a Service with a real PostgreSQL repository.
func NewService(pool *pgxpool.Pool) (*Service, error) {
	return &Service{repo: NewRepository(pool)}, nil
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers conversion HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/workflows").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("", s.HandleImportWorkflow).Methods("POST")
	router.HandleFunc("/{id}", s.HandleGetWorkflow).Methods("GET")
	router.HandleFunc("/{id}/convert", s.HandleConvertWorkflow).Methods("POST")
}
