package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-salvage-market/auth"
	"github.com/jrsteele09/go-salvage-market/internal/config"
	"github.com/jrsteele09/go-salvage-market/server/favoritesrepo"
	"github.com/jrsteele09/go-salvage-market/token"
	"github.com/jrsteele09/go-salvage-market/token/keys"
	"github.com/jrsteele09/go-salvage-market/token/refresh"
	"github.com/jrsteele09/go-salvage-market/users"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

// Repos groups the storage the reference Account and Favorites services run on
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
	Favorites     favoritesrepo.Repo
	Vehicles      vehicles.Catalog
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	repos    Repos
	signer   keys.Signer
	tokens   *token.Manager
	accounts *auth.AccountService
	nowFunc  func() time.Time
}

type Option func(*Server)

// WithSigner replaces the HMAC signer built from JWT_SECRET
func WithSigner(signer keys.Signer) Option {
	return func(s *Server) {
		s.signer = signer
	}
}

// WithNowFunc sets the clock used for token issue and expiry (primarily for testing)
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

func New(config config.Config, repos Repos, options ...Option) (*Server, error) {
	if repos.Users == nil || repos.RefreshTokens == nil || repos.Favorites == nil || repos.Vehicles == nil {
		return nil, errors.New("[Server New] all repos are required")
	}

	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		repos:   repos,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.signer == nil {
		signer, err := newSigner(config.GetJWTSecret())
		if err != nil {
			return nil, errors.Wrap(err, "[Server New] signer")
		}
		s.signer = signer
	}

	s.tokens = token.New(s.signer, repos.RefreshTokens, repos.Users, config,
		token.WithIssuer(config.GetIssuer()),
		token.WithNowFunc(s.nowFunc),
	)
	accounts, err := auth.NewAccountService(repos.Users, s.tokens, auth.WithNowTime(s.nowFunc))
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] account service")
	}
	s.accounts = accounts

	if err := s.InitialiseSystem(); err != nil {
		return nil, errors.Wrap(err, "[Server New] Failed to initialise the system")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func newSigner(secret string) (keys.Signer, error) {
	if secret != "" {
		return keys.NewHMACSigner(secret), nil
	}
	log.Warn().Msg("JWT_SECRET is empty, tokens will not survive a restart")
	return keys.NewRandomHMACSigner()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// RunMaintenance drops expired entries from the revoked token cache until ctx is done
func (s *Server) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tokens.CleanupRevokedTokens()
		}
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
