package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/robinvdvleuten/macrascript/ast"
	"github.com/robinvdvleuten/macrascript/errors"
	"github.com/robinvdvleuten/macrascript/export"
)

// maxSourceBody bounds PUT /api/source request bodies.
const maxSourceBody = 4 << 20

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type SourceResponse struct {
	Filepath string             `json:"filepath"`
	Source   string             `json:"source"`
	Errors   []errors.ErrorJSON `json:"errors"`
}

type SourceRequest struct {
	Source string `json:"source"`
}

type DocumentResponse struct {
	Filepath string             `json:"filepath"`
	Pattern  *export.Pattern    `json:"pattern,omitempty"`
	Errors   []errors.ErrorJSON `json:"errors"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	CommitSHA string `json:"commitSHA"`
}

// errorList converts a parse error into its JSON form. A nil error yields an
// empty, non-nil list so clients always see an array.
func errorList(err error) []errors.ErrorJSON {
	if err == nil {
		return []errors.ErrorJSON{}
	}
	return errors.NewJSONFormatter().FormatAllToSlice([]error{err})
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := SourceResponse{
		Filepath: s.file,
		Source:   string(s.source),
		Errors:   errorList(s.parseErr),
	}
	s.mu.RUnlock()

	writeJSONResponse(w, http.StatusOK, resp)
}

// handlePutSource replaces the pattern file. The new source must parse;
// otherwise the file is left untouched and the errors are returned.
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSourceBody+1))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxSourceBody {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var req SourceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	file := s.currentFile()
	source := []byte(req.Source)

	if _, err := s.Loader.LoadBytes(r.Context(), file, source); err != nil {
		writeJSONResponse(w, http.StatusUnprocessableEntity, SourceResponse{
			Filepath: file,
			Source:   req.Source,
			Errors:   errorList(err),
		})
		return
	}

	info, err := os.Stat(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to stat file: %v", err), http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(file, source, info.Mode().Perm()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write file: %v", err), http.StatusInternalServerError)
		return
	}
	s.Logger.Info("pattern saved", zap.String("file", file), zap.Int("bytes", len(source)))

	if err := s.reload(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to reload pattern: %v", err), http.StatusInternalServerError)
		return
	}
	s.broadcast("reload")

	s.handleGetSource(w, r)
}

// snapshot returns the served file, a private copy of its document and the
// last parse error. The copy stays valid after a reload swaps the document.
func (s *Server) snapshot() (string, *ast.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file, s.document.Clone(), s.parseErr
}

// handleGetDocument serves the parsed pattern in its export form.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	file, doc, parseErr := s.snapshot()

	if parseErr != nil {
		writeJSONResponse(w, http.StatusUnprocessableEntity, DocumentResponse{
			Filepath: file,
			Errors:   errorList(parseErr),
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, DocumentResponse{
		Filepath: file,
		Pattern:  export.FromDocument(doc),
		Errors:   errorList(nil),
	})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, VersionResponse{
		Version:   s.Version,
		CommitSHA: s.CommitSHA,
	})
}
