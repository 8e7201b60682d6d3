package http

import (
	"net/http"
	"time"

	"github.com/bnema/vidpipe/internal/adapter/http/middleware"
	"github.com/bnema/vidpipe/internal/adapter/http/ratelimit"
	"github.com/bnema/vidpipe/internal/service"
)

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
	authSvc    AuthService
	limiter    *ratelimit.FailureLimiter
}

func NewServer(authSvc AuthService, jobs JobService, eventBus *service.EventBus) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(jobs),
		sseHandler: NewSSEHandler(eventBus, jobs),
		authSvc:    authSvc,
		limiter:    ratelimit.NewFailureLimiter(5, 15*time.Minute, 30*time.Minute),
	}

	s.registerRoutes()

	return s
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return AuthMiddleware(s.authSvc, s.limiter, next)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", Healthz())

	s.mux.HandleFunc("POST /jobs/{kind}", s.auth(s.handlers.Submit()))
	s.mux.HandleFunc("GET /jobs", s.auth(s.handlers.List()))
	s.mux.HandleFunc("GET /jobs/{id}", s.auth(s.handlers.Get()))
	s.mux.HandleFunc("GET /jobs/{id}/status", s.auth(s.handlers.Status()))
	s.mux.HandleFunc("GET /jobs/{id}/artifact", s.auth(s.handlers.Artifact()))
	s.mux.HandleFunc("GET /jobs/{id}/events", s.auth(s.sseHandler.Events()))
	s.mux.HandleFunc("DELETE /jobs/{id}", s.auth(s.handlers.Cancel()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(s.mux).ServeHTTP(w, r)
}
