package client

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/viewstate"
)

const pagePath = "/clients"

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, page string, data any)
}

// Handler serves the clients tab. resolve returns the controller of the
// caller's session, activate switches the session to this tab.
type Handler struct {
	resolve    func(*http.Request) *Controller
	activate   func(*http.Request) <-chan struct{}
	render     Renderer
	renderWait time.Duration
	logger     *zap.Logger
}

func NewHandler(
	resolve func(*http.Request) *Controller,
	activate func(*http.Request) <-chan struct{},
	render Renderer,
	renderWait time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolve:    resolve,
		activate:   activate,
		render:     render,
		renderWait: renderWait,
		logger:     logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get(pagePath, h.Page)
	r.Get(pagePath+"/search", h.Search)
	r.Post(pagePath+"/dialog/new", h.OpenNew)
	r.Post(pagePath+"/{clientId}/edit", h.OpenEdit)
	r.Post(pagePath+"/dialog/cancel", h.Cancel)
	r.Post(pagePath+"/dialog/submit", h.Submit)
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	h.render.Render(w, r, "clients", h.resolve(r).View())
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	h.resolve(r).SearchByEmail(r.Context(), r.URL.Query().Get("email"))
	h.render.Render(w, r, "clients", h.resolve(r).View())
}

func (h *Handler) OpenNew(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	h.resolve(r).OpenNew()
	redirect(w, r)
}

func (h *Handler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	id := domain.ID(chi.URLParam(r, "clientId"))
	if !h.resolve(r).OpenEdit(id) {
		h.logger.Warn("edit requested for a client that is not listed", zap.String("clientId", id.String()))
	}
	redirect(w, r)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.resolve(r).Close()
	redirect(w, r)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	h.activate(r)

	ctrl := h.resolve(r)
	ctrl.SetDraft(Draft{
		Name:  r.PostForm.Get("name"),
		Email: r.PostForm.Get("email"),
		VIP:   r.PostForm.Get("vip") != "",
	})
	// Failures are reported through the session's toast.
	_ = ctrl.Submit(context.WithoutCancel(r.Context()))
	redirect(w, r)
}

func redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}
