package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/bookbind/internal/pipeline"
	"github.com/dgallion1/bookbind/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	books, err := s.catalog.Load(r.Context())
	if err != nil {
		s.log.Error("catalog load failed", "error", err)
		jsonError(w, "catalog unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}

	resp := map[string]any{
		"books": books,
		"count": len(books),
	}
	if len(books) == 0 {
		resp["message"] = "no books available"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.Atoi(chi.URLParam(r, "bookID"))
	if err != nil || bookID <= 0 {
		jsonError(w, "invalid book id", http.StatusBadRequest)
		return
	}

	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	book, found, err := s.catalog.Find(r.Context(), bookID)
	if err != nil {
		s.log.Error("catalog lookup failed", "book", bookID, "error", err)
		jsonError(w, "catalog unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}
	if !found {
		jsonError(w, fmt.Sprintf("book %d not in catalog", bookID), http.StatusNotFound)
		return
	}

	job := pipeline.NewJob(uuid.NewString(), book.ID, book.Title, format)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"book_id":  book.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		// fall through to serve the artifact
	case pipeline.StatusNoContent:
		jsonError(w, "no content found for this book", http.StatusNotFound)
		return
	case pipeline.StatusFailed:
		jsonError(w, "generation failed: "+snap.Error, http.StatusConflict)
		return
	default:
		jsonError(w, "document not ready", http.StatusConflict)
		return
	}

	doc, ok := job.Document()
	if !ok {
		jsonError(w, "document not ready", http.StatusConflict)
		return
	}

	filename := fmt.Sprintf("book-%d.%s", snap.BookID, snap.Format.Extension())
	w.Header().Set("Content-Type", snap.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(doc)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
