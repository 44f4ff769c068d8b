package product

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ordersconsole/internal/domain"
	"ordersconsole/internal/viewstate"
)

const pagePath = "/products"

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
	r.Post(pagePath+"/{productId}/stock", h.OpenStock)
	r.Post(pagePath+"/stock/cancel", h.CancelStock)
	r.Post(pagePath+"/stock/submit", h.SubmitStock)
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	viewstate.Await(h.activate(r), h.renderWait)
	h.render.Render(w, r, "products", h.resolve(r).View())
}

func (h *Handler) OpenNew(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	h.resolve(r).OpenNew()
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
		Name:          r.PostForm.Get("name"),
		Price:         r.PostForm.Get("price"),
		StockQuantity: r.PostForm.Get("stockQuantity"),
	})
	_ = ctrl.Submit(context.WithoutCancel(r.Context()))
	redirect(w, r)
}

func (h *Handler) OpenStock(w http.ResponseWriter, r *http.Request) {
	h.activate(r)
	id := domain.ID(chi.URLParam(r, "productId"))
	if !h.resolve(r).OpenStock(id) {
		h.logger.Warn("stock dialog requested for a product that is not listed", zap.String("productId", id.String()))
	}
	redirect(w, r)
}

func (h *Handler) CancelStock(w http.ResponseWriter, r *http.Request) {
	h.resolve(r).CloseStock()
	redirect(w, r)
}

func (h *Handler) SubmitStock(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	h.activate(r)

	ctrl := h.resolve(r)
	ctrl.SetStockDraft(r.PostForm.Get("stockQuantity"))
	_ = ctrl.SubmitStock(context.WithoutCancel(r.Context()))
	redirect(w, r)
}

func redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}
