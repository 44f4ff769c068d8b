package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ordersconsole/internal/viewstate"
)

const pagePath = "/dashboard"

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, page string, data any)
}

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
	r.Post(pagePath+"/refresh", h.Refresh)
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	h.render.Render(w, r, "dashboard", h.resolve(r).View())
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	// A fresh mount already fetches; only an existing view needs a reload.
	if done := h.activate(r); done != nil {
		if !viewstate.Await(done, h.renderWait) {
			h.logger.Debug("dashboard still loading after refresh")
		}
	} else {
		h.resolve(r).Reload(context.WithoutCancel(r.Context()))
	}
	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}
