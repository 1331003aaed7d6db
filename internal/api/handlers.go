package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memos/internal/memoservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *memoservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *memoservice.Service) *Handler {
	return &Handler{svc: svc}
}

const maxBodyBytes = 1 << 20

// splitList splits a comma separated query value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListMemos handles GET /api/memos.
//
//	@Summary		List memos newest first with optional filtering
//	@Tags			memos
//	@Produce		json
//	@Param			tag		query		string	false	"Filter by tag"
//	@Param			tags	query		string	false	"Comma separated tags, any of"
//	@Param			group	query		string	false	"Quick-tag group keyword or label"
//	@Param			q		query		string	false	"Case-insensitive text or tag search"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	MemoListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memos [get]
func (h *Handler) ListMemos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	page, err := h.svc.List(r.Context(), memoservice.Filter{
		Tag:    q.Get("tag"),
		Tags:   splitList(q.Get("tags")),
		Group:  q.Get("group"),
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, "list memos", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateMemo handles POST /api/memos.
//
//	@Summary		Append a memo to today's journal
//	@Tags			memos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateMemoRequest	true	"Memo to create"
//	@Success		201		{object}	Memo
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memos [post]
func (h *Handler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	memo, err := h.svc.Create(r.Context(), memoservice.CreateInput{
		Content: req.Content,
		Tags:    req.Tags,
		Group:   req.Group,
		AutoTag: req.AutoTag,
	})
	if err != nil {
		writeError(w, "create memo", err)
		return
	}
	writeJSON(w, http.StatusCreated, memo)
}

// UpdateMemo handles PUT /api/memos/{id}.
//
//	@Summary		Replace a memo's content and tags, keeping its time
//	@Tags			memos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Memo id"
//	@Param			body	body		UpdateMemoRequest	true	"Updated memo"
//	@Success		200		{object}	Memo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memos/{id} [put]
func (h *Handler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	var req UpdateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	memo, err := h.svc.Update(r.Context(), id, req.Content, req.Tags)
	if err != nil {
		writeError(w, "update memo", err)
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

// DeleteMemo handles DELETE /api/memos/{id}.
//
//	@Summary		Delete a memo
//	@Tags			memos
//	@Param			id	path	string	true	"Memo id"
//	@Success		204	"Memo deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memos/{id} [delete]
func (h *Handler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete memo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MemosByDate handles GET /api/memos/by-date.
//
//	@Summary		Memos grouped by journal date, newest first
//	@Tags			memos
//	@Produce		json
//	@Success		200	{object}	MemosByDateResponse
//	@Security		BearerAuth
//	@Router			/memos/by-date [get]
func (h *Handler) MemosByDate(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ByDate(r.Context())
	if err != nil {
		writeError(w, "memos by date", err)
		return
	}
	writeJSON(w, http.StatusOK, MemosByDateResponse{Dates: groups})
}

// Tags handles GET /api/tags.
//
//	@Summary		Distinct tags, sorted
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, "tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// QuickTags handles GET /api/quick-tags.
//
//	@Summary		Configured quick-tag groups
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	QuickTagsResponse
//	@Security		BearerAuth
//	@Router			/quick-tags [get]
func (h *Handler) QuickTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, QuickTagsResponse{Groups: h.svc.QuickTags()})
}

// Classify handles POST /api/classify.
//
//	@Summary		Preview the tags auto-tagging would add
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClassifyRequest	true	"Text to classify"
//	@Success		200		{object}	ClassifyResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/classify [post]
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tags, err := h.svc.Classify(req.Text, req.Group)
	if err != nil {
		writeError(w, "classify", err)
		return
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{Tags: tags})
}

// Stats handles GET /api/stats.
//
//	@Summary		Memo counts
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
