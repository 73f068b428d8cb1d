package render

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/fliplot/internal/figure"
)

// Source supplies freshly built figures on every request.
type Source interface {
	Figures(ctx context.Context) ([]*figure.Built, error)
}

// FigureSummary describes one figure on the index page and /api/figures.
type FigureSummary struct {
	Output string `json:"output"`
	Input  string `json:"input"`
	Title  string `json:"title,omitempty"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Series int    `json:"series"`
	Points int    `json:"points"`
	Digest string `json:"digest"`
}

// Summarize lists figures in order.
func Summarize(built []*figure.Built) []FigureSummary {
	out := make([]FigureSummary, len(built))
	for i, b := range built {
		spec := b.Spec.Normalized()
		out[i] = FigureSummary{
			Output: spec.Output,
			Input:  spec.Input,
			Title:  spec.Title,
			Rows:   spec.Rows,
			Cols:   spec.Cols,
			Series: len(b.Series),
			Points: b.Points(),
			Digest: b.Digest(),
		}
	}
	return out
}

// Server serves live renders of a script's figures. Every request reloads
// the source data so edits to the CSV files show up on refresh.
type Server struct {
	source     Source
	title      string
	opts       Options
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a new figure server.
func NewServer(src Source, title string, o Options) *Server {
	return &Server{
		source: src,
		title:  title,
		opts:   o,
	}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns the index URL, or empty string before the server starts.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr + "/"
}

// Handler returns the HTTP routes served by ListenAndServe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/figures/", s.handleFigure)
	mux.HandleFunc("/api/figures", s.handleSummary)
	return mux
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type indexData struct {
	Title   string
	Figures []FigureSummary
}

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html.tmpl"))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	built, err := s.source.Figures(r.Context())
	if err != nil {
		http.Error(w, "load error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{Title: s.title, Figures: Summarize(built)}); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

// handleFigure renders /figures/<output> from the current data.
func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/figures/")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	built, err := s.source.Figures(r.Context())
	if err != nil {
		http.Error(w, "load error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	for _, b := range built {
		if b.Spec.Output != name {
			continue
		}
		html, err := HTML(b, s.opts)
		if err != nil {
			http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
		return
	}
	http.Error(w, "figure not found: "+name, http.StatusNotFound)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	built, err := s.source.Figures(r.Context())
	if err != nil {
		http.Error(w, "load error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Summarize(built))
}
