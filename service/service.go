// Package service exposes a read-only HTTP surface over a published election
// record: the manifest, the context, and a verify endpoint that re-checks a
// submitted ballot's own proofs without touching any guardian secret. The
// router follows api/api.go's chi-based layout.
package service

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vocdoni/guardianvote/encryption"
	"github.com/vocdoni/guardianvote/log"
	"github.com/vocdoni/guardianvote/record"
)

const (
	PingEndpoint     = "/ping"
	ManifestEndpoint = "/manifest"
	ContextEndpoint  = "/context"
	VerifyEndpoint   = "/verify"
)

// Config is the service's construction-time configuration.
type Config struct {
	Addr  string
	Store *record.Store
}

// Service is the HTTP verify service over one election record.
type Service struct {
	router *chi.Mux
	store  *record.Store
}

// New builds a Service and registers its routes. It does not start listening;
// call ListenAndServe.
func New(conf Config) (*Service, error) {
	if conf.Store == nil {
		return nil, fmt.Errorf("service: missing record store")
	}
	s := &Service{store: conf.Store}
	s.initRouter()
	return s, nil
}

// Router returns the chi router, for embedding or testing.
func (s *Service) Router() *chi.Mux { return s.router }

// ListenAndServe blocks serving the router on addr.
func (s *Service) ListenAndServe(addr string) error {
	log.Infow("starting verify service", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Service) initRouter() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	r.Get(PingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.Infow("register handler", "endpoint", ManifestEndpoint, "method", "GET")
	r.Get(ManifestEndpoint, s.getManifest)

	log.Infow("register handler", "endpoint", ContextEndpoint, "method", "GET")
	r.Get(ContextEndpoint, s.getContext)

	log.Infow("register handler", "endpoint", VerifyEndpoint, "method", "POST")
	r.Post(VerifyEndpoint, s.verifyBallot)

	s.router = r
}

func (s *Service) getManifest(w http.ResponseWriter, _ *http.Request) {
	m, err := s.store.ReadManifest()
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Service) getContext(w http.ResponseWriter, _ *http.Request) {
	ctx, err := s.store.ReadContext()
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, ctx)
}

// verifyResult is the verify endpoint's response body.
type verifyResult struct {
	Valid bool `json:"valid"`
}

func (s *Service) verifyBallot(w http.ResponseWriter, r *http.Request) {
	var ballot encryption.EncryptedBallot
	if err := json.NewDecoder(r.Body).Decode(&ballot); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx, err := s.store.ReadContext()
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	ballot.Rehydrate(ctx.JointKey.Params())
	writeJSON(w, http.StatusOK, verifyResult{Valid: ballot.Verify(ctx.JointKey, ctx.ExtendedBaseHash)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("service: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Debugw("service: request failed", "status", status, "error", err)
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
