package order

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/viewstate"
)

const pagePath = "/orders"

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
	r.Post(pagePath+"/dialog/new", h.OpenNew)
	r.Post(pagePath+"/dialog/cancel", h.Cancel)
	r.Post(pagePath+"/dialog/submit", h.Submit)
	r.Post(pagePath+"/delete/confirm", h.ConfirmDelete)
	r.Post(pagePath+"/delete/cancel", h.CancelDelete)
	r.Get(pagePath+"/filter", h.Filter)
	r.Post(pagePath+"/filter/clear", h.ClearFilter)
	r.Post(pagePath+"/{orderId}/edit", h.OpenEdit)
	r.Post(pagePath+"/{orderId}/status", h.ChangeStatus)
	r.Post(pagePath+"/{orderId}/delete", h.RequestDelete)
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	h.render.Render(w, r, "orders", h.resolve(r).View())
}

func (h *Handler) OpenNew(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	if !h.resolve(r).OpenNew() {
		h.logger.Debug("order dialog requested before the form data finished loading")
	}
	redirect(w, r)
}

func (h *Handler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	id := domain.ID(chi.URLParam(r, "orderId"))
	if !h.resolve(r).OpenEdit(id) {
		h.logger.Warn("edit requested for an order that is not listed", zap.String("orderId", id.String()))
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
		ClientID:  r.PostForm.Get("clientId"),
		ProductID: r.PostForm.Get("productId"),
		Quantity:  r.PostForm.Get("quantity"),
		Status:    r.PostForm.Get("status"),
	})
	_ = ctrl.Submit(context.WithoutCancel(r.Context()))
	redirect(w, r)
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	h.activate(r)

	id := domain.ID(chi.URLParam(r, "orderId"))
	status := domain.OrderStatus(r.PostForm.Get("status"))
	_ = h.resolve(r).ChangeStatus(context.WithoutCancel(r.Context()), id, status)
	redirect(w, r)
}

func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	id := domain.ID(chi.URLParam(r, "orderId"))
	if !h.resolve(r).RequestDelete(id) {
		h.logger.Warn("delete requested for an order that is not listed", zap.String("orderId", id.String()))
	}
	redirect(w, r)
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	_ = h.resolve(r).ConfirmDelete(context.WithoutCancel(r.Context()))
	redirect(w, r)
}

func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.resolve(r).CancelDelete()
	redirect(w, r)
}

func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	q := r.URL.Query()
	_ = h.resolve(r).Filter(context.WithoutCancel(r.Context()), q.Get("clientId"), q.Get("status"))
	redirect(w, r)
}

func (h *Handler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	h.resolve(r).ClearFilter(context.WithoutCancel(r.Context()))
	redirect(w, r)
}

func redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}
