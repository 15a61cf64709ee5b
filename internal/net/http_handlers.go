// Package net exposes the relay, health and diagnostics endpoints over HTTP.
package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"mutant-life/internal/relay"
)

// HTTPHandlerConfig configures NewHTTPHandler.
type HTTPHandlerConfig struct {
	// ClientDir, when set, is served for every path that is not an endpoint
	// or a websocket upgrade.
	ClientDir string
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

// NewHTTPHandler routes health, diagnostics, websocket and static traffic.
func NewHTTPHandler(rl *relay.Relay, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "http")
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, logger, struct {
			Status    string `json:"status"`
			Timestamp string `json:"timestamp"`
		}{
			Status:    "healthy",
			Timestamp: now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, logger, struct {
			Status     string            `json:"status"`
			ServerTime int64             `json:"serverTime"`
			Relay      relay.Diagnostics `json:"relay"`
		}{
			Status:     "ok",
			ServerTime: now().UnixMilli(),
			Relay:      rl.Diagnostics(),
		})
	})

	mux.Handle("/ws", rl)

	var static nethttp.Handler
	if cfg.ClientDir != "" {
		static = nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
	}
	mux.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			rl.ServeHTTP(w, r)
			return
		}
		if static == nil {
			httpError(w, "not found", nethttp.StatusNotFound)
			return
		}
		static.ServeHTTP(w, r)
	})

	return mux
}

func writeJSON(w nethttp.ResponseWriter, logger logrus.FieldLogger, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("encode response")
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
