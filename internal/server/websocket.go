package server

import (
	"context"
	"net/http"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/engine"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/httpenv"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/wsbridge"
)

// widgetSocket runs one engine for the lifetime of a websocket session.
// The page reports its state and widget events; records flow back as
// setCustomData commands.
func (h *Handler) widgetSocket(w http.ResponseWriter, r *http.Request) {
	hints, err := h.hints(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hints"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Str("origin", r.Header.Get("Origin")).
			Msg("Failed to upgrade to WebSocket")
		return
	}

	live := browser.NewLive(*httpenv.FromRequest(r))
	bridge := wsbridge.New(conn, live, h.log)
	defer bridge.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	eng := engine.New(live, hints, bridge.Locate,
		engine.WithLogger(h.log),
		engine.WithBinderConfig(h.cfg.Binder()),
		engine.WithClock(h.now))
	eng.Start(ctx)

	h.log.Info().Str("remote_addr", r.RemoteAddr).Msg("widget session started")
	if err := bridge.ReadLoop(ctx); err != nil {
		h.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("widget session ended with error")
		return
	}
	h.log.Info().
		Str("remote_addr", r.RemoteAddr).
		Str("binder", eng.Binder().State().String()).
		Int("refreshes", eng.Refreshes()).
		Msg("widget session ended")
}

// checkWebSocketOrigin validates the origin against the CORS allow list.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.CORSAllowedOrigins {
		if allowed == origin || allowed == "*" {
			return true
		}
	}

	h.log.Warn().
		Str("origin", origin).
		Strs("allowed_origins", h.cfg.CORSAllowedOrigins).
		Msg("WebSocket origin not allowed")
	return false
}
