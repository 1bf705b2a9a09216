// Package server exposes client context inference over HTTP: a one-shot
// endpoint that infers the record from request headers, and a websocket
// endpoint that drives a live engine for a remote feedback widget.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/assembler"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/config"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/httpenv"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

type Handler struct {
	cfg         config.Config
	log         zerolog.Logger
	rateLimiter *apiRateLimiter
	upgrader    websocket.Upgrader
	now         func() time.Time
}

func NewHandler(cfg config.Config, log zerolog.Logger) *Handler {
	h := &Handler{
		cfg:         cfg,
		log:         log.With().Str("component", "server").Logger(),
		rateLimiter: newAPIRateLimiter(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst),
		now:         time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWebSocketOrigin,
	}
	return h
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", httpenv.HintsHeader},
		ExposedHeaders:   []string{"Accept-CH"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			if h.rateLimiter != nil {
				r.Use(h.rateLimiter.Middleware)
			}
			r.Use(acceptClientHints)
			r.Get("/context", h.inferContext)
			if h.cfg.InspectEnabled {
				r.Get("/inspect", h.inspect)
			}
		})
		r.Get("/widget", h.widgetSocket)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// inferContext builds a record from the request headers.
func (h *Handler) inferContext(w http.ResponseWriter, r *http.Request) {
	hints, err := h.hints(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hints"})
		return
	}

	asm := assembler.New(httpenv.FromRequest(r), hints,
		assembler.WithClock(h.now), assembler.WithLogger(h.log))
	writeJSON(w, http.StatusOK, asm.Build())
}

// inspect returns the record most recently published to a widget.
func (h *Handler) inspect(w http.ResponseWriter, r *http.Request) {
	rec, ok := widget.Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "nothing published yet"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// hints decodes caller hints; the configured build version fills in when
// the caller sends none.
func (h *Handler) hints(r *http.Request) (model.Hints, error) {
	hints, err := httpenv.HintsFromRequest(r)
	if err != nil {
		return model.Hints{}, err
	}
	if hints.BuildVersion == "" {
		hints.BuildVersion = h.cfg.BuildVersion
	}
	return hints, nil
}

// acceptClientHints asks browsers for the hints FromRequest reads.
func acceptClientHints(next http.Handler) http.Handler {
	value := httpenv.AcceptCHValue()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-CH", value)
		w.Header().Add("Vary", "Sec-CH-UA-Platform, Sec-CH-UA-Mobile, Sec-CH-Prefers-Color-Scheme")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
