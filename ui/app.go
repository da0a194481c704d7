// Package ui serves the HTML form front end of the predictor
package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"kickpredict/domain/campaign"
	"kickpredict/internal"
	"kickpredict/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router    *chi.Mux
	predictor ports.Predictor
	reports   ports.ReportRepository
	templates *template.Template
	logger    *internal.Logger
	port      string
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates a new UI application
func NewApp(config Config, predictor ports.Predictor, reports ports.ReportRepository) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		predictor: predictor,
		reports:   reports,
		templates: templates,
		logger:    internal.DefaultLogger,
		port:      config.Port,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/predict", a.handlePredict)
	a.router.Get("/model", a.handleModel)
	a.router.Handle("/static/*", http.FileServer(http.FS(embeddedFiles)))
}

// Handler exposes the router, for tests and embedding
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves until ctx is cancelled
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("Starting UI server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// formView is the data behind the index template
type formView struct {
	Categories []string
	Currencies []string
	Countries  []string
	Input      formValues
	Result     *resultView
	Error      string
}

type formValues struct {
	Name, MainCategory, Currency, Country string
	Deadline, Launched                    string
	Pledged, Goal                         string
}

type resultView struct {
	Success    bool
	Label      string
	Confidence string
	Message    string
	Fallbacks  []string
}

func newFormView() formView {
	return formView{
		Categories: campaign.SortedCategories(),
		Currencies: campaign.Currencies,
		Countries:  campaign.FormCountries,
	}
}

// renderTemplate executes a template into a buffer before writing the response
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("Template error for %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("Error writing template response: %v", err)
	}
}
