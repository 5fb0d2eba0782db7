// Package services talks to the external workflow-automation service that performs
// AI resume screening, email delivery and calendar scheduling on the recruiter's behalf.
//
// # Raw Client
//
// [APIService] issues plain GET/POST requests against the webhook base URL and returns
// an [APIResponse] carrying status, headers, body and the decoded JSON (when the body parses).
// The optional API key is sent in the X-API-Key header.
//
// # Workflow Client
//
// [WorkflowService] implements [Workflow]. Every call posts a JSON object whose "action"
// field names the operation, merged with the operation's payload.
//
// Endpoints are grouped by resource (see [DefaultEndpoints]) and probed in order:
//   - 404 or an "is not registered" webhook body marks the endpoint absent and the next one is tried
//   - when every endpoint is absent the call fails with [shared.ErrEndpointNotFound]
//   - the endpoint that answered is tried first on later calls
//
// # Retries and Pacing
//
// [RetryPolicy] retries network failures, 429 and 5xx responses with exponential backoff and
// ±30% jitter, honouring Retry-After. Other 4xx responses and context cancellation are final.
// A shared [rate.Limiter] paces requests across concurrent callers.
//
// # Error Handling
//
//   - [HTTPError] : non-2xx response, matches [shared.ErrWebhookFailed]
//   - [shared.ErrEndpointNotFound] : no endpoint registered for the resource
//   - [shared.ErrServiceUnavailable] : the service could not be reached
//
// Responses are treated as opaque JSON; the typed helpers decode known fields leniently
// (a screening score may arrive as a number or a numeric string).
package services
