package picture

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/picstash/service/internal/middleware"
	"github.com/picstash/service/internal/response"
)

// Handler holds HTTP handlers for picture endpoints.
type Handler struct {
	svc          *Service
	maxFileBytes int64
	maxURLBytes  int64
}

// NewHandler creates a new picture Handler.
func NewHandler(svc *Service, maxFileBytes, maxURLBytes int64) *Handler {
	return &Handler{svc: svc, maxFileBytes: maxFileBytes, maxURLBytes: maxURLBytes}
}

func actorFrom(r *http.Request) Actor {
	return Actor{
		ID:    middleware.UserID(r.Context()),
		Admin: middleware.IsAdmin(r.Context()),
	}
}

// Upload godoc
//
//	@Summary		Upload a picture file
//	@Description	Multipart upload. Optional form fields: id (replace), spaceId, name.
//	@Tags			pictures
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"image file"
//	@Success		200		{object}	response.Envelope{data=Picture}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/pictures [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// One extra MiB of headroom for the multipart framing itself.
	if err := r.ParseMultipartForm(h.maxFileBytes + 1<<20); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		response.BadRequest(w, "failed to read file")
		return
	}

	req := UploadRequest{
		ID:   r.FormValue("id"),
		Name: r.FormValue("name"),
	}
	if spaceID := r.FormValue("spaceId"); spaceID != "" {
		req.SpaceID = &spaceID
	}

	src := NewBinarySource(data, header.Filename, h.maxFileBytes)
	p, err := h.svc.Upload(r.Context(), src, req, actorFrom(r))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, p)
}

// UploadByURL godoc
//
//	@Summary	Upload a picture from a remote URL
//	@Tags		pictures
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		UploadRequest	true	"upload parameters"
//	@Success	200		{object}	response.Envelope{data=Picture}
//	@Failure	400		{object}	response.Envelope
//	@Router		/pictures/url [post]
func (h *Handler) UploadByURL(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	src := NewURLSource(req.FileURL, h.maxURLBytes, nil)
	p, err := h.svc.Upload(r.Context(), src, req, actorFrom(r))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary	Delete a picture
//	@Tags		pictures
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"picture id"
//	@Success	200	{object}	response.Envelope{data=bool}
//	@Failure	404	{object}	response.Envelope
//	@Router		/pictures/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), actorFrom(r)); err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, true)
}

// Get godoc
//
//	@Summary	Get a picture by id
//	@Tags		pictures
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"picture id"
//	@Success	200	{object}	response.Envelope{data=Picture}
//	@Failure	404	{object}	response.Envelope
//	@Router		/pictures/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, p)
}

// Edit godoc
//
//	@Summary	Edit a picture's descriptive fields
//	@Tags		pictures
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"picture id"
//	@Param		request	body		EditRequest	true	"editable fields"
//	@Success	200		{object}	response.Envelope{data=bool}
//	@Failure	400		{object}	response.Envelope
//	@Router		/pictures/{id} [patch]
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.svc.Edit(r.Context(), req, actorFrom(r)); err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, true)
}

// List godoc
//
//	@Summary	List pictures (paginated)
//	@Tags		pictures
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		ListQuery	true	"query"
//	@Success	200		{object}	response.Envelope{data=Page}
//	@Router		/pictures/list [post]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var q ListQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	page, err := h.svc.List(r.Context(), q, actorFrom(r))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, page)
}

// ListCached godoc
//
//	@Summary		List approved public pictures through the cache
//	@Description	Served via a local LRU plus Redis; results may lag writes by up to the cache TTL.
//	@Tags			pictures
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ListQuery	true	"query"
//	@Success		200		{object}	response.Envelope{data=Page}
//	@Router			/pictures/list/cached [post]
func (h *Handler) ListCached(w http.ResponseWriter, r *http.Request) {
	var q ListQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	page, err := h.svc.ListCached(r.Context(), q, actorFrom(r))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, page)
}

// Review godoc
//
//	@Summary	Review a picture (admin)
//	@Tags		pictures
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"picture id"
//	@Param		request	body		ReviewRequest	true	"review decision"
//	@Success	200		{object}	response.Envelope{data=bool}
//	@Failure	400		{object}	response.Envelope
//	@Router		/pictures/{id}/review [post]
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.svc.Review(r.Context(), req, actorFrom(r)); err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, true)
}

// IngestBatch godoc
//
//	@Summary	Batch-ingest pictures from an external search (admin)
//	@Tags		pictures
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		IngestRequest	true	"batch parameters"
//	@Success	200		{object}	response.Envelope{data=int}
//	@Failure	409		{object}	response.Envelope
//	@Router		/pictures/batch [post]
func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	n, err := h.svc.IngestBatch(r.Context(), req, actorFrom(r))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, n)
}

// TagCategory is the static tag/category manifest used by upload forms.
type TagCategory struct {
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

// TagCategories godoc
//
//	@Summary	List the suggested tags and categories
//	@Tags		pictures
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=TagCategory}
//	@Router		/pictures/tag-categories [get]
func (h *Handler) TagCategories(w http.ResponseWriter, r *http.Request) {
	response.OK(w, TagCategory{
		Tags:       []string{"popular", "portrait", "lifestyle", "hd", "art", "campus", "background", "anime", "minimal", "vintage"},
		Categories: []string{"avatar", "wallpaper", "meme", "asset", "poster"},
	})
}
