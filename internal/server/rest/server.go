package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MSSkowron/userregistry/internal/dto"
	"github.com/MSSkowron/userregistry/internal/service"
	"github.com/MSSkowron/userregistry/pkg/logger"
	"github.com/MSSkowron/userregistry/pkg/validation"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type contextKey string

const (
	// DefaultAddress is the default address the server listens on.
	DefaultAddress = ":5000"
	// DefaultWriteTimeout is the default write timeout for server responses.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultReadTimeout is the default read timeout for incoming requests.
	DefaultReadTimeout = 15 * time.Second

	contextKeyReqID = contextKey("reqID")
	headerRequestID = "X-Request-ID"

	// ErrMsgBadRequestInvalidRequestBody is a http response body message for bad request status code.
	ErrMsgBadRequestInvalidRequestBody = "Invalid request body"
	// ErrMsgBadRequestInvalidUserID is a http response body message for a malformed user ID in the path.
	ErrMsgBadRequestInvalidUserID = "Invalid user ID"
	// ErrMsgNotFound is a http response body message for not found status code.
	ErrMsgNotFound = "User not found"
	// ErrMsgInternalServerError is a http response body message for internal server error status code.
	ErrMsgInternalServerError = "Internal server error"
	// ErrMsgServiceUnavailable is a http response body message for a failed health check.
	ErrMsgServiceUnavailable = "Service unavailable"
)

// Pinger reports whether the identity store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server represents the REST API server.
type Server struct {
	*http.Server
	userService service.UserService
	pinger      Pinger
}

// NewServer creates a new Server instance.
func NewServer(userService service.UserService, opts ...ServerOption) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         DefaultAddress,
			WriteTimeout: DefaultWriteTimeout,
			ReadTimeout:  DefaultReadTimeout,
		},
		userService: userService,
	}

	for _, opt := range opts {
		opt(server)
	}

	server.initRoutes()

	return server
}

// ServerOption is a function signature for providing options to configure the Server.
type ServerOption func(*Server)

// WithAddress is an option to set the server address.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.Addr = addr
	}
}

// WithReadTimeout is an option to set the read timeout for the server.
func WithReadTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.ReadTimeout = timeout
	}
}

// WithWriteTimeout is an option to set the write timeout for the server.
func WithWriteTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.WriteTimeout = timeout
	}
}

// WithPinger is an option to set the dependency checked by the health endpoint.
func WithPinger(p Pinger) ServerOption {
	return func(s *Server) {
		s.pinger = p
	}
}

func (s *Server) initRoutes() {
	r := mux.NewRouter()

	r.Use(s.logMiddleware)

	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users", s.handleGetUserByUsername).Methods(http.MethodGet).Queries("user_name", "{user_name}")
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.Handler = r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	registerDTO := &dto.UserRegisterDTO{}
	if err := json.NewDecoder(r.Body).Decode(registerDTO); err != nil {
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidRequestBody)
		return
	}

	userDTO, err := s.userService.RegisterUser(r.Context(), registerDTO)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, userDTO)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidUserID)
		return
	}

	userDTO, err := s.userService.GetUser(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, userDTO)
}

func (s *Server) handleGetUserByUsername(w http.ResponseWriter, r *http.Request) {
	userDTO, err := s.userService.GetUserByUsername(r.Context(), mux.Vars(r)["user_name"])
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, userDTO)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.PingContext(r.Context()); err != nil {
			logger.Error("Health check failed", "error", err.Error())
			s.respondWithError(w, http.StatusServiceUnavailable, ErrMsgServiceUnavailable)
			return
		}
	}

	s.respondWithJSON(w, http.StatusOK, dto.HealthDTO{Status: "ok"})
}

func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, validation.ErrValidation):
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidRequestBody+": "+err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		s.respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		s.respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
	default:
		logger.Error("Request failed", "request_id", requestID(r), "path", r.URL.Path, "error", err.Error())
		s.respondWithError(w, http.StatusInternalServerError, ErrMsgInternalServerError)
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, errCode int, errMessage string) {
	s.respondWithJSON(w, errCode, dto.ErrorDTO{Error: errMessage})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal response to JSON", "error", err.Error())

		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte(ErrMsgInternalServerError)); err != nil {
			logger.Error("Failed to respond", "error", err.Error())
		}

		return
	}

	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		logger.Error("Failed to respond", "error", err.Error())
	}
}
