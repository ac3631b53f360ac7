// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowent-foundation/actionserver/lib/action"
	"github.com/flowent-foundation/actionserver/lib/clock"
	"github.com/flowent-foundation/actionserver/lib/signing"
)

// maxBodySize bounds the request body we will read. Gateway payloads
// are small JSON objects; 1 MB gives generous headroom.
const maxBodySize = 1 << 20

// Handler processes action invocations from the gateway. It owns the
// full request pipeline and the discovery/health endpoints. All state
// is read-only after construction, so a single Handler serves
// concurrent requests without synchronization.
type Handler struct {
	secret   []byte
	registry *action.Registry
	clock    clock.Clock
	window   time.Duration
	logger   *slog.Logger
	metrics  *Metrics
	limiter  *clientLimiter
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// Secret is the shared HMAC key. Required.
	Secret []byte

	// Registry holds the registered actions. Required, and must not
	// be mutated after the Handler is constructed.
	Registry *action.Registry

	// Clock is the time source for the replay window and the health
	// endpoint. Required.
	Clock clock.Clock

	// ReplayWindow bounds |now - timestamp|. Zero means the protocol
	// default of 300 seconds.
	ReplayWindow time.Duration

	// Logger is the structured logger. Required.
	Logger *slog.Logger

	// Metrics is the Prometheus instrumentation. Required.
	Metrics *Metrics

	// RateLimitPerSecond enables per-client-IP rate limiting when
	// > 0. Limited requests are rejected before any signature work.
	RateLimitPerSecond float64

	// RateLimitBurst is the bucket size when rate limiting is
	// enabled.
	RateLimitBurst int
}

// NewHandler creates a Handler. Panics on missing required fields —
// these are wiring bugs, not runtime conditions.
func NewHandler(config HandlerConfig) *Handler {
	if len(config.Secret) == 0 {
		panic("callback.Handler: Secret is required")
	}
	if config.Registry == nil {
		panic("callback.Handler: Registry is required")
	}
	if config.Clock == nil {
		panic("callback.Handler: Clock is required")
	}
	if config.Logger == nil {
		panic("callback.Handler: Logger is required")
	}
	if config.Metrics == nil {
		panic("callback.Handler: Metrics is required")
	}

	window := config.ReplayWindow
	if window == 0 {
		window = signing.DefaultReplayWindow
	}

	var limiter *clientLimiter
	if config.RateLimitPerSecond > 0 {
		burst := config.RateLimitBurst
		if burst <= 0 {
			burst = int(config.RateLimitPerSecond)
		}
		limiter = newClientLimiter(config.RateLimitPerSecond, burst)
	}

	return &Handler{
		secret:   config.Secret,
		registry: config.Registry,
		clock:    config.Clock,
		window:   window,
		logger:   config.Logger,
		metrics:  config.Metrics,
		limiter:  limiter,
	}
}

// Routes returns the HTTP handler for all callback endpoints.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /actions/{action}", h.handleAction)
	mux.HandleFunc("GET /actions", h.handleList)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.metrics.Gatherer(), promhttp.HandlerOpts{}))
	return mux
}

// handleAction runs the request pipeline: parse, test short-circuit,
// signature check, replay check, dispatch. First failure wins.
func (h *Handler) handleAction(writer http.ResponseWriter, request *http.Request) {
	actionName := request.PathValue("action")

	if h.limiter != nil && !h.limiter.allow(clientIP(request)) {
		h.metrics.rateLimited.Inc()
		h.writeResponse(writer, "action", http.StatusTooManyRequests, ActionResponse{Error: "rate limit exceeded"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(request.Body, maxBodySize))
	if err != nil {
		h.logger.Error("failed to read request body", "error", err)
		h.writeResponse(writer, "action", http.StatusInternalServerError, ActionResponse{Error: "failed to read request body"})
		return
	}

	var req ActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeResponse(writer, "action", http.StatusBadRequest, ActionResponse{Error: "invalid JSON payload"})
		return
	}

	// Registration-time liveness probe: the gateway sends test=true
	// to confirm reachability before the shared key is necessarily
	// in play. No signature, no timestamp check.
	if req.Test != nil && *req.Test {
		h.logger.Info("test request", "action", actionName)
		h.writeResponse(writer, "action", http.StatusOK, ActionResponse{
			Result: fmt.Sprintf("Test successful for action: %s", actionName),
		})
		return
	}

	if req.Signature == "" {
		h.rejectUnauthorized(writer, request, actionName, "missing_signature", nil)
		return
	}

	parameters := req.Parameters
	if len(parameters) == 0 {
		parameters = json.RawMessage(`{}`)
	}

	payload, err := signing.EncodePayload(req.ActionName, parameters, req.Timestamp, req.Test)
	if err != nil {
		h.writeResponse(writer, "action", http.StatusBadRequest, ActionResponse{Error: "missing or malformed payload fields"})
		return
	}

	if err := signing.Verify(h.secret, payload, req.Signature); err != nil {
		// The canonical payload and the received signature are safe
		// to log; the expected digest and the key are not.
		h.logger.Debug("signature verification detail",
			"canonical", string(payload),
			"received_signature", req.Signature,
		)
		h.rejectUnauthorized(writer, request, actionName, "bad_signature", err)
		return
	}

	if err := signing.CheckTimestamp(req.Timestamp, h.clock.Now(), h.window); err != nil {
		reason := "stale_timestamp"
		if errors.Is(err, signing.ErrMissingTimestamp) {
			reason = "missing_timestamp"
		}
		h.rejectUnauthorized(writer, request, actionName, reason, err)
		return
	}

	var params map[string]any
	if err := json.Unmarshal(parameters, &params); err != nil {
		h.writeResponse(writer, "action", http.StatusBadRequest, ActionResponse{Error: "parameters must be a JSON object"})
		return
	}

	start := h.clock.Now()
	result := h.registry.Dispatch(request.Context(), actionName, params)
	elapsed := h.clock.Now().Sub(start)

	if result.Error != "" {
		h.metrics.observeDispatch(actionName, "error", elapsed)
		h.logger.Error("action failed", "action", actionName, "error", result.Error)
		h.writeResponse(writer, "action", http.StatusInternalServerError, ActionResponse{Error: result.Error})
		return
	}

	h.metrics.observeDispatch(actionName, "success", elapsed)
	h.logger.Info("action completed", "action", actionName, "duration", elapsed)
	h.writeResponse(writer, "action", http.StatusOK, ActionResponse{Result: result.Result})
}

// rejectUnauthorized writes the single generic 401 response used for
// every authentication and replay failure. The reason is recorded in
// logs and metrics only: distinguishing a stale timestamp from a bad
// signature in the response would give an attacker a validity oracle
// for captured signatures.
func (h *Handler) rejectUnauthorized(writer http.ResponseWriter, request *http.Request, actionName, reason string, err error) {
	h.metrics.observeAuthFailure(reason)
	h.logger.Warn("request rejected",
		"action", actionName,
		"reason", reason,
		"error", err,
		"remote_addr", request.RemoteAddr,
	)
	h.writeResponse(writer, "action", http.StatusUnauthorized, ActionResponse{Error: "unauthorized"})
}

// handleHealth serves the unauthenticated liveness probe.
func (h *Handler) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	h.metrics.observeRequest("health", http.StatusOK)
	writeJSON(writer, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.clock.Now().Unix(),
	})
}

// handleList serves action metadata for documentation. It is not an
// authoritative schema; the gateway holds the registered schemas.
func (h *Handler) handleList(writer http.ResponseWriter, _ *http.Request) {
	type listEntry struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Parameters  []string `json:"parameters"`
	}

	definitions := h.registry.Definitions()
	entries := make([]listEntry, 0, len(definitions))
	for _, def := range definitions {
		parameters := def.Parameters
		if parameters == nil {
			parameters = []string{}
		}
		entries = append(entries, listEntry{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  parameters,
		})
	}

	h.metrics.observeRequest("actions", http.StatusOK)
	writeJSON(writer, http.StatusOK, map[string]any{"actions": entries})
}

func (h *Handler) writeResponse(writer http.ResponseWriter, route string, status int, response ActionResponse) {
	h.metrics.observeRequest(route, status)
	writeJSON(writer, status, response)
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

// clientIP extracts the host part of the remote address for rate
// limiting. Falls back to the raw RemoteAddr when it has no port.
func clientIP(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
