// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/poiesic/doctwin"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// maxUploadBytes caps the multipart form held in memory per upload.
const maxUploadBytes = 64 << 20

const defaultPageSize = 50

// Server exposes the ingestion service over HTTP.
type Server struct {
	service *doctwin.Service
	logger  *slog.Logger
}

// NewServer creates an HTTP server over the given service.
func NewServer(service *doctwin.Service) *Server {
	return &Server{
		service: service,
		logger:  slog.Default().With("component", "api"),
	}
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/v1/tenants/{tenantID}/projects/{projectID}/files", s.handleUpload)
	r.Get("/v1/files/{fileID}/status", s.handleStatus)
	r.Get("/v1/projects/{projectID}/files", s.handleList)
	r.Delete("/v1/files/{fileID}", s.handleDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "doctwin"})
}

// uploadResponse is the body returned for a stored upload.
type uploadResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Status   core.FileStatus `json:"status"`
	Size     int64           `json:"size"`
	Checksum string          `json:"checksum"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	projectID := chi.URLParam(r, "projectID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := s.service.Upload(r.Context(), doctwin.UploadRequest{
		TenantID:  tenantID,
		ProjectID: projectID,
		Name:      r.FormValue("name"),
		Filename:  header.Filename,
		MimeType:  header.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		ID:       file.ID,
		Name:     file.Name,
		Status:   file.Status,
		Size:     file.Size,
		Checksum: file.Checksum,
	})
}

// stageTimestamps mirrors the per-stage markers on the file row. Stages
// that never ran are omitted.
type stageTimestamps struct {
	ConversionStartedAt   time.Time `json:"conversion_started_at,omitzero"`
	ConversionCompletedAt time.Time `json:"conversion_completed_at,omitzero"`
	ParsingStartedAt      time.Time `json:"parsing_started_at,omitzero"`
	ParsingCompletedAt    time.Time `json:"parsing_completed_at,omitzero"`
	EnrichmentStartedAt   time.Time `json:"enrichment_started_at,omitzero"`
	EnrichmentCompletedAt time.Time `json:"enrichment_completed_at,omitzero"`
	ChunkingStartedAt     time.Time `json:"chunking_started_at,omitzero"`
	ChunkingCompletedAt   time.Time `json:"chunking_completed_at,omitzero"`
	EmbeddingStartedAt    time.Time `json:"embedding_started_at,omitzero"`
	EmbeddingCompletedAt  time.Time `json:"embedding_completed_at,omitzero"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// statusResponse is the processing-status view of a file.
type statusResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Status      core.FileStatus `json:"status"`
	TotalChunks int             `json:"total_chunks"`
	LastError   string          `json:"last_error,omitempty"`
	Timestamps  stageTimestamps `json:"timestamps"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	file, err := s.service.GetFile(r.Context(), fileID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:          file.ID,
		Name:        file.Name,
		Status:      file.Status,
		TotalChunks: file.TotalChunks,
		LastError:   file.LastError,
		Timestamps: stageTimestamps{
			ConversionStartedAt:   file.ConversionStartedAt,
			ConversionCompletedAt: file.ConversionCompletedAt,
			ParsingStartedAt:      file.ParsingStartedAt,
			ParsingCompletedAt:    file.ParsingCompletedAt,
			EnrichmentStartedAt:   file.EnrichmentStartedAt,
			EnrichmentCompletedAt: file.EnrichmentCompletedAt,
			ChunkingStartedAt:     file.ChunkingStartedAt,
			ChunkingCompletedAt:   file.ChunkingCompletedAt,
			EmbeddingStartedAt:    file.EmbeddingStartedAt,
			EmbeddingCompletedAt:  file.EmbeddingCompletedAt,
			CreatedAt:             file.CreatedAt,
			UpdatedAt:             file.UpdatedAt,
		},
	})
}

// listResponse is one page of a project's files.
type listResponse struct {
	Files []storage.FileListing `json:"files"`
	Page  int                   `json:"page"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		page = parsed
	}
	pageSize := defaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid page_size", http.StatusBadRequest)
			return
		}
		pageSize = parsed
	}

	files, err := s.service.ListFiles(r.Context(), projectID, page, pageSize)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if files == nil {
		files = []storage.FileListing{}
	}

	writeJSON(w, http.StatusOK, listResponse{Files: files, Page: page})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	if err := s.service.Delete(r.Context(), fileID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrTombstoned):
		http.Error(w, "file not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrBadKey), errors.Is(err, core.ErrInvalidFile):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
