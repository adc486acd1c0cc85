package activity

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/activity-atlas/pkg/adapters"
	"github.com/de-tools/activity-atlas/pkg/models/api"
	"github.com/de-tools/activity-atlas/pkg/services/activity"
	"github.com/de-tools/activity-atlas/pkg/services/config"
	"github.com/de-tools/activity-atlas/pkg/services/fetch"
	"github.com/de-tools/activity-atlas/pkg/services/vendor"
	"github.com/rs/zerolog"
)

const (
	ServiceName    = "Activity Atlas API"
	ServiceVersion = "1.0.0"

	maxBodyBytes = 8 << 20
)

var features = api.FeaturesResponse{
	Features: []string{
		"Daily step aggregation",
		"Mean and median statistics",
		"Peak activity detection",
		"Weekday vs weekend patterns",
		"Time-interval analysis",
		"Missing data imputation",
		"Statistical summaries",
		"Data quality metrics",
	},
	Algorithms: []string{
		"5-minute canonical bucketing",
		"Interval-mean imputation",
		"Sequential rate-limit aware fetching",
	},
}

type Handler struct {
	svc            activity.Service
	requestTimeout time.Duration
}

func NewHandler(svc activity.Service, requestTimeout time.Duration) *Handler {
	return &Handler{svc: svc, requestTimeout: requestTimeout}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, api.Health{Status: "healthy"})
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, api.ServiceInfo{
		Service: ServiceName,
		Version: ServiceVersion,
		Status:  "operational",
		Features: []string{
			"Multi-device integration",
			"Statistical analysis",
			"Pattern detection",
		},
	})
}

func (h *Handler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms := h.svc.Platforms()
	response := api.PlatformsResponse{Platforms: make([]api.Platform, 0, len(platforms))}
	for _, p := range platforms {
		response.Platforms = append(response.Platforms, adapters.MapPlatformDomainToApi(p))
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, features)
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profiles, err := h.svc.Profiles(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	response := make([]api.Profile, 0, len(profiles))
	for _, p := range profiles {
		response = append(response, adapters.MapProfileDomainToApi(p))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	var body api.AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	req, err := adapters.MapAnalyzeRequestApiToDomain(body)
	if err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.svc.Analyze(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapAnalysisResultDomainToApi(*result, body.IncludeSeries))
}

// writeError maps service errors onto HTTP statuses.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := zerolog.Ctx(ctx)
	response := api.ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var fe *fetch.FetchError
	switch {
	case errors.Is(err, activity.ErrInvalidRequest),
		errors.Is(err, fetch.ErrInvalidRange),
		errors.Is(err, fetch.ErrRangeTooLong),
		errors.Is(err, vendor.ErrUnsupportedVendor):
		status = http.StatusBadRequest
	case errors.Is(err, config.ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.As(err, &fe):
		response.Class = string(fe.Class)
		switch fe.Class {
		case fetch.ClassAuthenticationFailure:
			status = http.StatusUnauthorized
		case fetch.ClassRateLimited:
			status = http.StatusTooManyRequests
			if fe.RetryAfter > 0 {
				secs := int(math.Ceil(fe.RetryAfter.Seconds()))
				response.RetryAfterSeconds = secs
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
		default:
			status = http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(ctx, w, status, response)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
