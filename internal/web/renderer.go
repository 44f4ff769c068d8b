// Package web renders the console pages and streams toasts to the browser.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ordersconsole/internal/dashboard"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/order"
	"ordersconsole/internal/shell"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "clients", "products", "orders"}

// Chrome is what every page shows around its own content.
type Chrome struct {
	Tabs     []shell.TabInfo
	Active   shell.Tab
	Toast    *notification.Notification
	ToastTTL time.Duration
	Theme    Theme
}

type Page struct {
	Chrome
	Name    string
	Data    any
	Refresh bool
}

type loadingView interface {
	Loading() bool
}

type Renderer struct {
	pages  map[string]*template.Template
	chrome func(*http.Request) Chrome
	logger *zap.Logger
}

func NewRenderer(format *Formatter, chrome func(*http.Request) Chrome, logger *zap.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"price":         format.Price,
		"count":         format.Count,
		"createdAt":     order.CreatedAtLabel,
		"orderLabel":    dashboard.OrderLabel,
		"orderQuantity": dashboard.OrderQuantity,
		"str":           func(v any) string { return fmt.Sprint(v) },
		"ms":            func(d time.Duration) int64 { return d.Milliseconds() },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{
		pages:  pages,
		chrome: chrome,
		logger: logger,
	}, nil
}

// Render writes page with data inside the layout. While the view is still
// loading the page asks the browser to come back shortly.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown page", zap.String("page", page))
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	p := Page{
		Chrome: r.chrome(req),
		Name:   page,
		Data:   data,
	}
	if lv, ok := data.(loadingView); ok {
		p.Refresh = lv.Loading()
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		r.logger.Error("rendering page failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
