package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ordersconsole/internal/client"
	"ordersconsole/internal/dashboard"
	"ordersconsole/internal/notification"
	"ordersconsole/internal/order"
	"ordersconsole/internal/product"
	"ordersconsole/internal/session"
	"ordersconsole/internal/shell"
	"ordersconsole/internal/web"
)

type RouterConfig struct {
	Sessions   *session.Store[*shell.Shell]
	Formatter  *web.Formatter
	Theme      web.Theme
	RenderWait time.Duration
}

// NewRouter wires the console pages behind the session middleware. Every
// browser gets its own shell; the handlers reach it through the request.
func NewRouter(cfg RouterConfig, logger *zap.Logger) (http.Handler, error) {
	renderer, err := web.NewRenderer(cfg.Formatter, chrome(cfg.Theme), logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
		r.Get("/events", web.Events(notifierOf, logger))

		dashboard.NewHandler(
			func(r *http.Request) *dashboard.Controller { return currentShell(r).Dashboard },
			activator(shell.TabDashboard),
			renderer, cfg.RenderWait, logger,
		).Routes(r)
		client.NewHandler(
			func(r *http.Request) *client.Controller { return currentShell(r).Clients },
			activator(shell.TabClients),
			renderer, cfg.RenderWait, logger,
		).Routes(r)
		product.NewHandler(
			func(r *http.Request) *product.Controller { return currentShell(r).Products },
			activator(shell.TabProducts),
			renderer, cfg.RenderWait, logger,
		).Routes(r)
		order.NewHandler(
			func(r *http.Request) *order.Controller { return currentShell(r).Orders },
			activator(shell.TabOrders),
			renderer, cfg.RenderWait, logger,
		).Routes(r)
	})

	return r, nil
}

// currentShell is only called behind the session middleware, which always
// attaches one.
func currentShell(r *http.Request) *shell.Shell {
	sh, _ := session.FromContext[*shell.Shell](r.Context())
	return sh
}

func activator(tab shell.Tab) func(*http.Request) <-chan struct{} {
	return func(r *http.Request) <-chan struct{} {
		return currentShell(r).Activate(tab)
	}
}

func notifierOf(r *http.Request) (*notification.Notifier, bool) {
	sh, ok := session.FromContext[*shell.Shell](r.Context())
	if !ok || sh == nil {
		return nil, false
	}
	return sh.Notifier, true
}

func chrome(theme web.Theme) func(*http.Request) web.Chrome {
	return func(r *http.Request) web.Chrome {
		c := web.Chrome{Tabs: shell.Tabs(), Theme: theme}

		sh, ok := session.FromContext[*shell.Shell](r.Context())
		if !ok || sh == nil {
			return c
		}
		c.Active = sh.Active()
		c.ToastTTL = sh.Notifier.TTL()
		if n, ok := sh.Notifier.Current(); ok {
			c.Toast = &n
		}
		return c
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if r.URL.Path == "/healthz" || r.URL.Path == "/events" {
				logger.Debug("request", fields...)
				return
			}
			logger.Info("request", fields...)
		})
	}
}
