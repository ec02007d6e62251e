package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/salesboard/internal/core"
	"github.com/JonMunkholm/salesboard/internal/logging"
	"github.com/JonMunkholm/salesboard/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is added to the file size limit for form boundaries and fields.
const multipartOverhead = 1 << 20

const defaultUploadHistory = 50

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadPage(s.service.Catalog()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"uploads": s.service.UploadLimiterStatus(),
	}
	if err := s.service.Health(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		status["status"] = "unavailable"
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Catalog())
}

// handleUpload ingests the multipart "file" field and stores the records.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	res, err := s.service.Upload(r.Context(), name, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.respondUpload(w, r, http.StatusCreated, res)
}

// handlePreview runs the same ingestion as handleUpload without storing.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	res, err := s.service.Preview(r.Context(), name, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.respondUpload(w, r, http.StatusOK, res)
}

func (s *Server) respondUpload(w http.ResponseWriter, r *http.Request, status int, res *core.UploadResult) {
	if !isHTMX(r) {
		writeJSON(w, r, status, res)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadResult(res).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload result", "error", err)
	}
}

// formFile returns the uploaded file and its client-side name.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, "", fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, s.cfg.Upload.MaxFileSize)
		}
		return nil, "", fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	if header.Size > s.cfg.Upload.MaxFileSize {
		file.Close()
		return nil, "", fmt.Errorf("%w: %d bytes", core.ErrFileTooLarge, header.Size)
	}
	return file, header.Filename, nil
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := s.service.Records(r.Context(), core.RecordQuery{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Branch:   q.Get("branch"),
		Channel:  q.Get("channel"),
		UploadID: q.Get("upload"),
		Limit:    parseIntParam(r, "limit", 0),
		Offset:   parseIntParam(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.service.Uploads(r.Context(), parseIntParam(r, "limit", defaultUploadHistory))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, uploads)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	u, err := s.service.GetUpload(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, u)
}

func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.UploadLimiterStatus())
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.RollbackUpload(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.service.Targets(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, targets)
}

// setTargetRequest is the body of POST /api/targets.
type setTargetRequest struct {
	Branch string  `json:"branch"`
	Value  float64 `json:"value"`
}

func (s *Server) handleSetTarget(w http.ResponseWriter, r *http.Request) {
	var req setTargetRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidTarget, err))
		return
	}

	t, err := s.service.SetTarget(r.Context(), req.Branch, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

// parseIntParam reads a non-negative integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
