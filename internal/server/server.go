// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/churnscope/internal/pipeline"
	"github.com/KaramelBytes/churnscope/internal/report"
	"github.com/KaramelBytes/churnscope/internal/samples"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	gomponents "maragu.dev/gomponents"
)

// Config configures the HTTP shell.
type Config struct {
	UploadLimitMB int
	Samples       samples.Catalog
	// Analyze is the base option set for every request.
	Analyze pipeline.Options
}

// Server serves the upload form, sample datasets and analysis results.
type Server struct {
	cfg Config
	log *zap.Logger
}

// New returns a Server. A nil logger is replaced by a no-op logger.
func New(cfg Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.UploadLimitMB <= 0 {
		cfg.UploadLimitMB = 50
	}
	cfg.Analyze.Logger = log
	return &Server{cfg: cfg, log: log}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/samples", s.handleSamples)
	r.Post("/analyze", s.handleAnalyze)
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.cfg.Samples.List()
	if err != nil {
		s.log.Warn("list samples", zap.Error(err))
	}
	renderHTML(w, http.StatusOK, report.UploadPage(names, s.cfg.UploadLimitMB, r.URL.Query().Get("error")))
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	names, err := s.cfg.Samples.List()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "samples", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"samples": names, "default": samples.DefaultName})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.UploadLimitMB)<<20)
	src, notice, err := s.source(r)
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			writeError(w, r, http.StatusRequestEntityTooLarge, "load", err)
		case errors.Is(err, samples.ErrUnknown), errors.Is(err, samples.ErrNone):
			writeError(w, r, http.StatusNotFound, "load", err)
		default:
			writeError(w, r, http.StatusBadRequest, "load", err)
		}
		return
	}

	opt := s.cfg.Analyze
	opt.Logger = s.log.With(zap.String("request_id", chimw.GetReqID(r.Context())))
	if t := strings.TrimSpace(r.FormValue("target")); t != "" {
		opt.TargetColumn = t
	}
	b, err := pipeline.Analyze(r.Context(), src, opt)
	if err != nil {
		kind := pipeline.Classify(err)
		status := http.StatusInternalServerError
		switch kind {
		case pipeline.KindLoad:
			status = http.StatusUnprocessableEntity
		case pipeline.KindCanceled:
			status = http.StatusServiceUnavailable
		}
		writeError(w, r, status, string(kind), err)
		return
	}
	b.Notice = notice
	if r.URL.Query().Get("format") == "html" {
		renderHTML(w, http.StatusOK, report.Page(b))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// source picks the dataset for a request: an uploaded file, a raw body, a named sample,
// or the default sample (with a notice) when nothing was supplied.
func (s *Server) source(r *http.Request) (pipeline.Source, string, error) {
	if name := r.URL.Query().Get("sample"); name != "" {
		p, err := s.cfg.Samples.Path(name)
		if err != nil {
			return pipeline.Source{}, "", err
		}
		return pipeline.Source{Path: p}, "", nil
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case ct == "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return pipeline.Source{}, "", fmt.Errorf("parse form: %w", err)
		}
		f, hdr, err := r.FormFile("file")
		if err == nil {
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return pipeline.Source{}, "", fmt.Errorf("read upload: %w", err)
			}
			return pipeline.Source{Name: hdr.Filename, Data: data}, "", nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return pipeline.Source{}, "", fmt.Errorf("read upload: %w", err)
		}
	case ct != "application/x-www-form-urlencoded":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return pipeline.Source{}, "", fmt.Errorf("read body: %w", err)
		}
		if len(data) > 0 {
			name := r.URL.Query().Get("name")
			if name == "" {
				name = "upload.csv"
			}
			return pipeline.Source{Name: name, Data: data}, "", nil
		}
	}

	p, notice, err := s.cfg.Samples.Default()
	if err != nil {
		return pipeline.Source{}, "", fmt.Errorf("no dataset supplied: %w", err)
	}
	return pipeline.Source{Path: p}, notice, nil
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, kind string, err error) {
	if r.URL.Query().Get("format") == "html" {
		renderHTML(w, status, report.ErrorPage("Analysis failed", err.Error()))
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": kind})
}
