package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"golang.org/x/time/rate"
)

// errEndpointAbsent marks a probed endpoint that is not registered on the automation service.
var errEndpointAbsent = errors.New("endpoint not registered")

// WorkflowService implements [Workflow] on top of [APIService].
//
// Each resource maps to an ordered list of endpoint paths. Calls probe the list in order,
// skipping endpoints that answer 404 or report an unregistered webhook, and remember the
// first endpoint that answered so later calls try it first.
type WorkflowService struct {
	api       *APIService
	endpoints map[string][]string
	retry     RetryPolicy
	limiter   *rate.Limiter
	logger    *log.Logger

	mu       sync.Mutex
	resolved map[string]string
}

// NewWorkflowService builds a client from cfg. A nil client gets one with the configured timeout.
func NewWorkflowService(cfg shared.WorkflowConfig, client *http.Client, logger *log.Logger) (*WorkflowService, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	baseDelay, err := cfg.BaseDelayDuration()
	if err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: workflow.max_retries must not be negative", shared.ErrInvalidConfig)
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	endpoints := make(map[string][]string, len(DefaultEndpoints))
	for resource, paths := range DefaultEndpoints {
		endpoints[resource] = slices.Clone(paths)
	}
	for resource, paths := range cfg.Endpoints {
		if len(paths) == 0 {
			continue
		}
		normalized := make([]string, 0, len(paths))
		for _, p := range paths {
			if p = strings.TrimSpace(p); p != "" {
				normalized = append(normalized, "/"+strings.TrimLeft(p, "/"))
			}
		}
		endpoints[resource] = normalized
	}

	return &WorkflowService{
		api:       NewAPIService(cfg.BaseURL, client).WithAPIKey(cfg.APIKey),
		endpoints: endpoints,
		retry:     RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: baseDelay},
		limiter:   rate.NewLimiter(limit, 1),
		logger:    shared.WithLogger(logger, "component", "workflow"),
		resolved:  make(map[string]string),
	}, nil
}

// API exposes the underlying raw client.
func (w *WorkflowService) API() *APIService {
	return w.api
}

// Endpoints returns the probe order for resource.
func (w *WorkflowService) Endpoints(resource string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := slices.Clone(w.endpoints[resource])
	if preferred, ok := w.resolved[resource]; ok {
		if i := slices.Index(paths, preferred); i > 0 {
			paths = append([]string{preferred}, slices.Delete(paths, i, i+1)...)
		}
	}
	return paths
}

// Call implements [Workflow].
func (w *WorkflowService) Call(ctx context.Context, resource, action string, payload map[string]any) (*APIResponse, error) {
	paths := w.Endpoints(resource)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no endpoints configured for resource %q", shared.ErrInvalidInput, resource)
	}

	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = action

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", resource, err)
	}

	for _, path := range paths {
		logger := w.logger.With("endpoint", path, "action", action)

		resp, err := w.post(ctx, logger, path, data)
		if errors.Is(err, errEndpointAbsent) {
			logger.Debug("endpoint not registered, trying next")
			w.forget(resource, path)
			continue
		}
		if err != nil {
			return nil, w.wrapErr(resource, action, err)
		}

		w.remember(resource, path)
		logger.Debug("webhook call succeeded", "status", resp.StatusCode)
		return resp, nil
	}

	return nil, fmt.Errorf("%w: %s (tried %s)", shared.ErrEndpointNotFound, resource, strings.Join(paths, ", "))
}

func (w *WorkflowService) post(ctx context.Context, logger *log.Logger, path string, data []byte) (*APIResponse, error) {
	var resp *APIResponse
	err := w.retry.Do(ctx, logger, func() error {
		if err := w.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: rate limiter: %w", shared.ErrTimeout, err)
		}

		r, err := w.api.Post(ctx, path, data)
		if err != nil {
			return err
		}
		if endpointAbsent(r) {
			return errEndpointAbsent
		}
		if !r.OK() {
			return newHTTPError(r)
		}
		resp = r
		return nil
	})
	return resp, err
}

func (w *WorkflowService) wrapErr(resource, action string, err error) error {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Errorf("%s %s: %w", resource, action, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, shared.ErrTimeout):
		return fmt.Errorf("%s %s: %w", resource, action, err)
	default:
		return fmt.Errorf("%w: %s %s: %w", shared.ErrServiceUnavailable, resource, action, err)
	}
}

func (w *WorkflowService) remember(resource, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resolved[resource] = path
}

func (w *WorkflowService) forget(resource, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.resolved[resource] == path {
		delete(w.resolved, resource)
	}
}

// endpointAbsent reports whether a response means the webhook path is not registered.
func endpointAbsent(resp *APIResponse) bool {
	if resp.StatusCode == http.StatusNotFound {
		return true
	}
	if resp.OK() {
		return false
	}
	body := strings.ToLower(string(resp.Body))
	return strings.Contains(body, "webhook") && strings.Contains(body, "not registered")
}

// SyncCandidate implements [Workflow].
func (w *WorkflowService) SyncCandidate(ctx context.Context, action string, c *models.Candidate) error {
	_, err := w.Call(ctx, ResourceCandidates, action, map[string]any{"id": c.ID, "candidate": c})
	return err
}

// SyncJob implements [Workflow].
func (w *WorkflowService) SyncJob(ctx context.Context, action string, j *models.Job) error {
	_, err := w.Call(ctx, ResourceJobs, action, map[string]any{"id": j.ID, "job": j})
	return err
}

// ScreenResume implements [Workflow].
//
// The score may arrive as a number or a numeric string and is clamped to 0-100.
func (w *WorkflowService) ScreenResume(ctx context.Context, req ScreeningRequest) (*ScreeningResult, error) {
	resp, err := w.Call(ctx, ResourceScreening, ActionScreen, map[string]any{"candidate": req})
	if err != nil {
		return nil, err
	}

	obj := firstObject(resp.JSONData)
	if obj == nil {
		return nil, fmt.Errorf("%w: screening response is not a JSON object", shared.ErrWebhookFailed)
	}

	score, ok := numberField(obj, "score", "ai_score", "match_score")
	if !ok {
		return nil, fmt.Errorf("%w: screening response has no score", shared.ErrWebhookFailed)
	}

	return &ScreeningResult{
		Score:          clampScore(score),
		Summary:        stringField(obj, "summary", "ai_summary", "analysis"),
		Recommendation: stringField(obj, "recommendation"),
		Raw:            obj,
	}, nil
}

// SendEmail implements [Workflow].
func (w *WorkflowService) SendEmail(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("%w: email recipient is required", shared.ErrInvalidInput)
	}
	_, err := w.Call(ctx, ResourceEmail, ActionSend, map[string]any{"email": msg})
	return err
}

// ScheduleInterview implements [Workflow].
func (w *WorkflowService) ScheduleInterview(ctx context.Context, req InterviewRequest) (*InterviewResult, error) {
	resp, err := w.Call(ctx, ResourceInterviews, ActionSchedule, map[string]any{"interview": req})
	if err != nil {
		return nil, err
	}

	result := &InterviewResult{}
	if obj := firstObject(resp.JSONData); obj != nil {
		result.EventID = stringField(obj, "event_id", "eventId", "calendar_event_id", "id")
		result.MeetingURL = stringField(obj, "meeting_url", "meetingUrl", "hangoutLink", "meet_link")
		result.Raw = obj
	}
	return result, nil
}

// CancelInterview implements [Workflow].
func (w *WorkflowService) CancelInterview(ctx context.Context, interviewID, eventID, reason string) error {
	_, err := w.Call(ctx, ResourceInterviews, ActionCancel, map[string]any{
		"interview_id": interviewID,
		"event_id":     eventID,
		"reason":       reason,
	})
	return err
}

// Ping implements [Workflow].
func (w *WorkflowService) Ping(ctx context.Context) error {
	_, err := w.Call(ctx, ResourceCandidates, ActionPing, nil)
	return err
}

// firstObject returns v as an object, or the first element when v is an array of objects.
func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if inner, ok := t["data"].(map[string]any); ok {
			return inner
		}
		return t
	case []any:
		if len(t) > 0 {
			return firstObject(t[0])
		}
	}
	return nil
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func numberField(obj map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case float64:
			return v, true
		case string:
			s := strings.TrimSuffix(strings.TrimSpace(v), "%")
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func clampScore(f float64) int {
	return int(math.Round(math.Max(0, math.Min(100, f))))
}
