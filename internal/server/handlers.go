package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/pipeline"
	"github.com/hyperjump/kiku/internal/session"
	"github.com/hyperjump/kiku/internal/storage"
	"github.com/hyperjump/kiku/internal/transcript"
	"github.com/hyperjump/kiku/internal/videoid"
)

type buildRequest struct {
	Reference         string `json:"reference"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	Translate         *bool  `json:"translate,omitempty"`
	Rebuild           bool   `json:"rebuild,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type videoResponse struct {
	VideoID   string              `json:"video_id"`
	Build     *models.BuildResult `json:"build"`
	Index     index.Meta          `json:"index"`
	CreatedAt string              `json:"created_at"`
}

func newVideoResponse(s *session.Session) videoResponse {
	return videoResponse{
		VideoID:   s.VideoID,
		Build:     s.Build,
		Index:     s.Info(),
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (s *Server) handleBuildVideo(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("build request", zap.String("reference", req.Reference), zap.Bool("rebuild", req.Rebuild))
	sess, err := s.sessions.Create(r.Context(), pipeline.BuildRequest{
		Reference:         req.Reference,
		PreferredLanguage: req.PreferredLanguage,
		Translate:         req.Translate,
		Rebuild:           req.Rebuild,
	})
	if err != nil {
		s.fail(w, "build failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, sess.Build)
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	out := make([]videoResponse, len(list))
	for i, sess := range list {
		out[i] = newVideoResponse(sess)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"videos": out})
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get video failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, newVideoResponse(sess))
}

// handleClearVideo closes the session. With ?purge=true the index is also
// deleted from disk.
func (s *Server) handleClearVideo(w http.ResponseWriter, r *http.Request) {
	id, err := videoid.Extract(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "clear failed", err)
		return
	}
	purge := r.URL.Query().Get("purge") == "true"
	err = s.sessions.Clear(id)
	if err != nil && !(purge && errors.Is(err, session.ErrNoSession)) {
		s.fail(w, "clear failed", err)
		return
	}
	if purge {
		if err := index.Remove(videoid.IndexPath(s.config.Storage.IndexRoot, id)); err != nil {
			s.fail(w, "purge failed", err)
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"video_id": id, "status": "cleared", "purged": purge})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var q models.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if q.K == 0 {
		q.K = s.config.Retrieval.K
	}
	res, err := s.sessions.Ask(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		s.fail(w, "ask failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.sessions.Search(r.Context(), chi.URLParam(r, "id"), req.Query, req.Limit)
	if err != nil {
		s.fail(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	root := s.config.Storage.IndexRoot
	summaries, err := index.List(root)
	if err != nil {
		s.fail(w, "status failed", err)
		return
	}
	resp := map[string]interface{}{
		"index_root": root,
		"indexes":    summaries,
		"sessions":   len(s.sessions.List()),
		"config": map[string]interface{}{
			"embedding_provider": s.config.Embedding.Provider,
			"embedding_model":    s.config.Embedding.Model,
			"generation_model":   s.config.Generation.Model,
			"segment_chars":      s.config.Pipeline.SegmentChars,
			"chunk_size":         s.config.Pipeline.ChunkSize,
			"chunk_overlap":      *s.config.Pipeline.ChunkOverlap,
			"translate":          s.config.Pipeline.TranslateOrDefault(),
			"k":                  s.config.Retrieval.K,
			"fetch_k":            s.config.Retrieval.FetchK,
			"lambda_mult":        *s.config.Retrieval.LambdaMult,
		},
	}
	if diskBytes, err := storage.DiskUsageBytes(root); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error to an HTTP status: bad input is 400, a missing
// index 404, an unavailable transcript 422, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, videoid.ErrInvalidReference), errors.Is(err, models.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSession), errors.Is(err, index.ErrNotFound):
		return http.StatusNotFound
	case transcript.IsUnavailable(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, index.ErrLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
