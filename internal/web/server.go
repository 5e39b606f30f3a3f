// Package web serves the static landing page with a single-page-app style
// fallback to index.html.
package web

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const indexFile = "index.html"

var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType returns the Content-Type for a file name.
func ContentType(name string) string {
	if ct, ok := mimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Server serves files from an fs.FS.
type Server struct {
	files  fs.FS
	logger *log.Logger
}

// NewServer creates a file server rooted at files.
func NewServer(files fs.FS, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{files: files, logger: logger}
}

// Routes returns the HTTP handler with middleware attached.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/*", s.handleFile)
	r.Head("/*", s.handleFile)

	return r
}

// resolve maps a request path to a file name inside the served tree.
// ok is false when the path escapes the root.
func resolve(urlPath string) (name string, ok bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" {
		return indexFile, true
	}
	rel = path.Clean(rel)
	if strings.Contains(rel, "..") {
		return "", false
	}
	if rel == "." {
		return indexFile, true
	}
	return rel, true
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name, ok := resolve(r.URL.Path)
	if !ok {
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	data, err := s.readFile(name)
	if err != nil {
		if name != indexFile {
			data, err = s.readFile(indexFile)
			if err == nil {
				writeBody(w, r, ContentType(indexFile), data)
				return
			}
		}
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("read failed", "path", name, "err", err)
		}
		writeText(w, http.StatusNotFound, "Not Found")
		return
	}

	writeBody(w, r, ContentType(name), data)
}

// readFile reads a regular file; directories count as missing.
func (s *Server) readFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrNotExist
	}
	info, err := fs.Stat(s.files, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(s.files, name)
}

func writeBody(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
