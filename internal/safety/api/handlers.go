package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/safety/pipeline"
)

// ResolveRequest is the body of POST /v1/resolve.
type ResolveRequest struct {
	Names []string `json:"names"`
}

// ResolveResponse lists safety data per requested name. Names without data
// are listed in Unresolved.
type ResolveResponse struct {
	Results    map[string]domain.SafetyInfo `json:"results"`
	Unresolved []string                     `json:"unresolved"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxImageSize)

	image, lang, err := readImage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	result, err := s.scanner.ProcessImage(ctx, image, pipeline.Options{LanguageHint: lang})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readImage accepts either a multipart form with an "image" file or the
// raw image bytes as the request body.
func readImage(r *http.Request) ([]byte, string, error) {
	lang := r.URL.Query().Get("lang")

	var image []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			if isTooLarge(err) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("read image field: %w", domain.ErrInvalidImage)
		}
		defer file.Close()

		image, err = io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("read image field: %w", err)
		}
		if v := r.FormValue("lang"); v != "" {
			lang = v
		}
	} else {
		var err error
		image, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("read body: %w", err)
		}
	}

	if len(image) == 0 {
		return nil, "", fmt.Errorf("empty upload: %w", domain.ErrInvalidImage)
	}
	return image, lang, nil
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResolveBody)

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be {\"names\": [...]}"})
		return
	}
	if len(req.Names) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "names is required"})
		return
	}
	if len(req.Names) > maxResolveNames {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("at most %d names per request", maxResolveNames)})
		return
	}

	results := s.scanner.ResolveBatch(r.Context(), req.Names)

	resp := ResolveResponse{Results: results, Unresolved: []string{}}
	for _, name := range req.Names {
		if _, ok := results[name]; !ok && strings.TrimSpace(name) != "" {
			resp.Unresolved = append(resp.Unresolved, name)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.scanner.ClearCache(r.Context()); err != nil {
		s.logger.Error("Failed to clear cache", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "cache could not be cleared"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Warn("Scan failed", "status", code, "error", err)
	} else {
		s.logger.Debug("Scan rejected", "status", code, "error", err)
	}

	msg := domain.UserMessage(err)
	if code == http.StatusRequestEntityTooLarge {
		msg = "The photo is too large."
	}
	writeJSON(w, code, errorResponse{Error: msg})
}

// StatusFor maps a pipeline error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case isTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoTextDetected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrAuthFailure),
		errors.Is(err, domain.ErrParseFailure),
		errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
