package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/hydrotrim/internal/app/system/timeouts"
	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Prober checks each remote disease endpoint; nil entries are healthy.
type Prober interface {
	Probe(ctx context.Context) map[models.Disease]error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client // nil when preferences live in the cookie
	API    Prober
	Log    *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(client *mongo.Client, api Prober, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		API:    api,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Remote   map[string]string `json:"remote,omitempty"`
	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "remote":{"dengue":"ok",...} }
//
// A failing remote endpoint marks the status "degraded" but still answers
// 200. On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "not configured",
	}

	if h.Client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		err := h.Client.Ping(ctx, readpref.Primary())
		cancel()
		if err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		resp.Database = "connected"
	}

	if h.API != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Fetch())
		results := h.API.Probe(ctx)
		cancel()

		resp.Remote = make(map[string]string, len(results))
		for d, err := range results {
			if err != nil {
				h.Log.Warn("health-check: remote endpoint failed",
					zap.String("disease", string(d)), zap.Error(err))
				resp.Remote[string(d)] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Remote[string(d)] = "ok"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
