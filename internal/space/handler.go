package space

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/picstash/service/internal/middleware"
	"github.com/picstash/service/internal/response"
)

// Handler holds HTTP handlers for space endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new space Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

// Create godoc
//
//	@Summary		Create a space
//	@Description	Provisions a quota-bounded space for the authenticated user.
//	@Tags			spaces
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createRequest	true	"space attributes"
//	@Success		200		{object}	response.Envelope{data=Space}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/spaces [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	sp, err := h.svc.Create(r.Context(), middleware.UserID(r.Context()), req.Name, req.Level)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, sp)
}

// Get godoc
//
//	@Summary	Get a space by id
//	@Tags		spaces
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"space id"
//	@Success	200	{object}	response.Envelope{data=Space}
//	@Failure	404	{object}	response.Envelope
//	@Router		/spaces/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sp, err := h.svc.Get(r.Context(), id, middleware.UserID(r.Context()), middleware.IsAdmin(r.Context()))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, sp)
}

// GetMine godoc
//
//	@Summary	Get the caller's space
//	@Tags		spaces
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=Space}
//	@Failure	404	{object}	response.Envelope
//	@Router		/spaces/me [get]
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	sp, err := h.svc.GetByOwner(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.OK(w, sp)
}
