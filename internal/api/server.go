// Package api serves the panel over HTTP with Huma.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"golang.org/x/crypto/bcrypt"

	"github.com/smazurov/segpanel/internal/api/models"
	"github.com/smazurov/segpanel/internal/display"
	"github.com/smazurov/segpanel/internal/events"
	"github.com/smazurov/segpanel/internal/led"
	"github.com/smazurov/segpanel/internal/logging"
	"github.com/smazurov/segpanel/internal/systemd"
	"github.com/smazurov/segpanel/internal/updater"
	"github.com/smazurov/segpanel/internal/version"
)

const authRealm = `Basic realm="segpanel"`

// PanelService is the display surface the API drives.
type PanelService interface {
	Show(source display.Source, digits string, leadingZero bool) error
	ShowFaded(source display.Source, digits string, leadingZero bool) error
	Fade(direction string) error
	ShowDateTime() error
	Enable() error
	Disable() error
	Status() display.Status
}

// ServiceManager controls the segpanel systemd unit.
type ServiceManager interface {
	Unit() string
	Status(ctx context.Context) (systemd.UnitStatus, error)
	Restart(ctx context.Context) error
}

// Options configures NewServer. Nil optional services leave their routes
// unregistered.
type Options struct {
	AuthUsername string
	AuthPassword string
	// AuthPasswordHash is a bcrypt hash and takes precedence over AuthPassword.
	AuthPasswordHash string

	Panel             PanelService
	EventBus          *events.Bus
	PrometheusHandler http.Handler
	UpdateService     updater.Service
	SystemdManager    ServiceManager
	LEDController     led.Controller
}

// Server is the HTTP API.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewServer builds the API on a new ServeMux.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("segpanel API", version.Version)
	config.Info.Description = "Seven-segment display panel control"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	bus := opts.EventBus
	if bus == nil {
		bus = events.New()
	}
	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		eventBus: bus,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if check := opts.credentialCheck(); check != nil {
		api.UseMiddleware(server.basicAuthMiddleware(check))
	}

	// Prometheus scrapes without credentials.
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// credentialCheck returns nil when auth is not configured.
func (o *Options) credentialCheck() func(user, pass string) bool {
	if o.AuthUsername == "" {
		return nil
	}
	wantUser := []byte(o.AuthUsername)
	switch {
	case o.AuthPasswordHash != "":
		hash := []byte(o.AuthPasswordHash)
		return func(user, pass string) bool {
			userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
			passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
			return userOK && passOK
		}
	case o.AuthPassword != "":
		wantPass := []byte(o.AuthPassword)
		return func(user, pass string) bool {
			userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
			return userOK && passOK
		}
	default:
		return nil
	}
}

// basicAuthMiddleware enforces credentials on operations that declare the
// basicAuth scheme. SSE clients that cannot set headers may pass the
// base64 credentials in the auth query parameter.
func (s *Server) basicAuthMiddleware(check func(user, pass string) bool) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		reject := func(msg string, errs ...error) {
			ctx.SetHeader("WWW-Authenticate", authRealm)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg, errs...)
		}

		var encoded string
		if header := ctx.Header("Authorization"); header != "" {
			const prefix = "Basic "
			if !strings.HasPrefix(header, prefix) {
				reject("Invalid authentication type")
				return
			}
			encoded = header[len(prefix):]
		} else {
			encoded = ctx.Query("auth")
		}
		if encoded == "" {
			reject("Authentication required")
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			reject("Invalid credentials format", err)
			return
		}
		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok {
			reject("Invalid credentials format")
			return
		}
		if !check(user, pass) {
			reject("Invalid credentials")
			return
		}

		next(ctx)
	}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// API returns the Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Start serves on addr until Stop is called. It returns nil after Stop.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting segpanel API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and every open connection, SSE streams included.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(ctx context.Context, input *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				BuildID:   info.BuildID,
				GoVersion: info.GoVersion,
				Compiler:  info.Compiler,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerPanelRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
	s.registerMetricsRoutes()
	s.registerSystemdRoutes()
	s.registerUpdateRoutes()
	s.registerLEDRoutes()
}

// withAuth returns the security requirement for basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
