// Package web serves the login and timeline pages.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ict4events/eventsite/internal/auth"
	"github.com/ict4events/eventsite/internal/config"
	"github.com/ict4events/eventsite/internal/db"
	"github.com/ict4events/eventsite/internal/locale"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Store is the subset of *db.Store the pages use.
type Store interface {
	ExecuteReader(ctx context.Context, proc string, params ...db.Param) ([]db.Row, error)
	ExecuteScalar(ctx context.Context, proc string, params ...db.Param) (any, error)
	ExecuteNonQuery(ctx context.Context, proc string, params ...db.Param) (bool, error)
	Ping(ctx context.Context) error
}

type Server struct {
	auth    *auth.Authenticator
	store   Store
	text    *locale.Locale
	session config.Session
	logger  *zap.Logger

	tmpl   *template.Template
	router *httprouter.Router
}

func NewServer(authenticator *auth.Authenticator, store Store, text *locale.Locale, session config.Session, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		auth:    authenticator,
		store:   store,
		text:    text,
		session: session,
		logger:  logger.Named("web"),
		tmpl:    tmpl,
		router:  httprouter.New(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/Account/Login", s.handleLoginForm)
	s.router.POST("/Account/Login", s.handleLogin)
	s.router.POST("/Account/Logout", s.handleLogout)
	s.router.GET("/Timeline", s.handleTimeline)
	s.router.POST("/Timeline", s.handleNewPost)
	s.router.GET("/healthz", s.handleHealth)
	s.router.PanicHandler = s.handlePanic
}

// Handler returns the router wrapped in request-id and access-log middleware.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.accessLog(s.router))
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
		defer cancel()
		s.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, s.session.DefaultRedirect, http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log(r).Warn("Health check failed", zap.Error(err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handlePanic(w http.ResponseWriter, r *http.Request, v any) {
	s.log(r).Error("Handler panicked", zap.Any("panic", v), zap.Stack("stack"))
	http.Error(w, s.text.Login.GenericError, http.StatusInternalServerError)
}

type pageData struct {
	Lang  string
	Title string
	T     *locale.Locale
	Error string
}

func (s *Server) page(title string) pageData {
	return pageData{Lang: s.text.Name, Title: title, T: s.text}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log(r).Error("Rendering template failed", zap.String("template", name), zap.Error(err))
	}
}
