package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paperlab/oshiete/internal/finder"
	"github.com/paperlab/oshiete/internal/models"
	"github.com/paperlab/oshiete/internal/tutor"
)

// maxUploadBytes caps the multipart upload size before extraction. The
// character limit applies to extracted text, not the file itself.
const maxUploadBytes = 64 << 20

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	f := finder.NewFinder(s.cfg.Finder.ChunkSize, s.cfg.Finder.ChunkOverlap, s.cfg.Finder.MaxMatches)

	opts := []tutor.ControllerOption{
		tutor.WithLogger(s.logger),
		tutor.WithPaperIndex(f),
	}
	if s.archive != nil {
		opts = append(opts, tutor.WithArchive(s.archive))
	}
	ctl := tutor.NewController(id, s.extractor, s.connect,
		s.cfg.Limits.MaxChars, s.cfg.Limits.WarningChars, opts...)

	s.sessions.add(id, &sessionEntry{ctl: ctl, finder: f})
	s.logger.Info("session created", zap.String("session", id))
	s.respondJSON(w, http.StatusCreated, ctl.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer entry.mu.Unlock()
	s.respondJSON(w, http.StatusOK, entry.ctl.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if !entry.mu.TryLock() {
		s.respondError(w, http.StatusConflict, "session busy")
		return
	}
	defer entry.mu.Unlock()
	s.sessions.remove(id)
	entry.finder.Drop()
	s.logger.Info("session deleted", zap.String("session", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleUploadPaper(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer entry.mu.Unlock()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	result, err := entry.ctl.Upload(r.Context(), content, header.Filename)
	if err != nil {
		s.logger.Warn("upload failed",
			zap.String("session", entry.ctl.ID()),
			zap.String("filename", header.Filename),
			zap.Error(err))
		s.respondError(w, uploadStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer entry.mu.Unlock()

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, failed, err := entry.ctl.Send(r.Context(), req.Content)
	if err != nil {
		s.respondError(w, http.StatusConflict, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, Failed: failed})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer entry.mu.Unlock()

	if err := entry.ctl.Clear(r.Context()); err != nil {
		s.respondError(w, lifecycleStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, entry.ctl.Snapshot())
}

func (s *Server) handleReinit(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer entry.mu.Unlock()

	if err := entry.ctl.Reinit(r.Context()); err != nil {
		s.respondError(w, lifecycleStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, entry.ctl.Snapshot())
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer entry.mu.Unlock()

	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	if !entry.finder.Ready() {
		s.respondError(w, http.StatusConflict, "no paper loaded")
		return
	}
	resp, err := entry.finder.Find(r.Context(), query)
	if err != nil {
		s.logger.Error("find failed", zap.String("session", entry.ctl.ID()), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.count(),
	})
}

// lockSession resolves the session from the URL and serializes access to it.
// A session already processing an event yields 409 rather than queueing.
// On success the caller owns entry.mu and must unlock it.
func (s *Server) lockSession(w http.ResponseWriter, r *http.Request) (*sessionEntry, bool) {
	id := chi.URLParam(r, "id")
	entry, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if !entry.mu.TryLock() {
		s.respondError(w, http.StatusConflict, "session busy")
		return nil, false
	}
	return entry, true
}

// uploadStatus maps an upload failure to its HTTP status.
func uploadStatus(err error) int {
	var extractionErr *tutor.ExtractionError
	var sizeErr *tutor.SizeExceededError
	var initErr *tutor.BackendInitError
	switch {
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &initErr):
		return http.StatusBadGateway
	default:
		return http.StatusConflict
	}
}

// lifecycleStatus maps clear and reinit failures: backend trouble is a
// gateway problem, anything else is a state conflict.
func lifecycleStatus(err error) int {
	var initErr *tutor.BackendInitError
	if errors.As(err, &initErr) {
		return http.StatusBadGateway
	}
	return http.StatusConflict
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
