// Package web provides a local preview server for MacraScript patterns.
//
// The server exposes a small JSON API for reading and editing one pattern
// file, serves the parsed document for renderers, and pushes reload events
// over Server-Sent Events whenever the file changes on disk.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/loader"
	"github.com/robinvdvleuten/macrascript/telemetry"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading. Editors often save in several steps.
const DefaultDebounce = 100 * time.Millisecond

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	ReadOnly     bool
	WatchEnabled bool
	Debounce     time.Duration
	Logger       *zap.Logger
	Loader       *loader.Loader

	// inputFile is the file path passed to New(). After loading, file holds
	// the absolute path.
	inputFile string

	mu       sync.RWMutex
	file     string
	source   []byte
	document *ast.Document
	parseErr error

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(port int, patternFile string) *Server {
	return NewWithVersion(port, patternFile, "", "")
}

func NewWithVersion(port int, patternFile, version, commitSHA string) *Server {
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		Version:    version,
		CommitSHA:  commitSHA,
		Debounce:   DefaultDebounce,
		Logger:     zap.NewNop(),
		Loader:     loader.New(),
		inputFile:  patternFile,
		sseClients: make(map[chan string]struct{}),
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Start loads the pattern, starts the watcher and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("web.start %s", s.Addr()))

	if s.inputFile == "" {
		timer.End()
		return fmt.Errorf("pattern file is required")
	}

	loadTimer := timer.Child(fmt.Sprintf("web.load %s", filepath.Base(s.inputFile)))
	err := s.reload(ctx)
	loadTimer.End()
	if err != nil {
		timer.End()
		return fmt.Errorf("failed to load pattern: %w", err)
	}

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	timer.End()

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("serving pattern", zap.String("addr", srv.Addr), zap.String("file", s.currentFile()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/source", s.handleGetSource)
	mux.HandleFunc("PUT /api/source", s.requireWritable(s.handlePutSource))
	mux.HandleFunc("GET /api/document", s.handleGetDocument)
	mux.HandleFunc("GET /api/version", s.handleGetVersion)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// reload loads or reloads the pattern from disk. A pattern that does not
// parse is kept together with its error so clients can show it; only I/O
// failures are returned.
func (s *Server) reload(ctx context.Context) error {
	file, err := filepath.Abs(s.inputFile)
	if err != nil {
		return err
	}

	var (
		source   []byte
		document *ast.Document
		parseErr error
	)

	result, err := s.Loader.Load(ctx, file)
	var loadErr *loader.Error
	switch {
	case err == nil:
		source, document = result.Source, result.Document
	case stderrors.As(err, &loadErr):
		source, parseErr = loadErr.Source, loadErr.Err
	default:
		return err
	}

	s.mu.Lock()
	s.file = file
	s.source = source
	s.document = document
	s.parseErr = parseErr
	s.mu.Unlock()

	if parseErr != nil {
		s.Logger.Warn("pattern does not parse", zap.String("file", file), zap.Error(parseErr))
	} else {
		s.Logger.Debug("pattern loaded", zap.String("file", file), zap.Stringer("type", document.Type))
	}
	return nil
}

func (s *Server) currentFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file
}

// startWatcher starts watching the pattern file. It reloads the pattern and
// broadcasts SSE events when the file changes.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(s.currentFile()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.currentFile(), err)
	}

	go s.runWatcher(ctx, watcher)
	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Remove and Rename are how atomic saves show up.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.Debounce, func() {
				s.handleFileChange(ctx, watcher)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.Logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// handleFileChange reloads the pattern, re-arms the watch and notifies
// clients.
func (s *Server) handleFileChange(ctx context.Context, watcher *fsnotify.Watcher) {
	if err := s.reload(ctx); err != nil {
		s.Logger.Error("failed to reload pattern", zap.Error(err))
		return
	}

	// Atomic saves replace the inode, so the old watch may be gone.
	file := s.currentFile()
	if err := watcher.Add(file); err != nil {
		s.Logger.Warn("failed to watch file", zap.String("file", file), zap.Error(err))
	}

	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-clientChan:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}

// closeClients ends every open event stream.
func (s *Server) closeClients() {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		close(clientChan)
		delete(s.sseClients, clientChan)
	}
}
