// Package server exposes the recruiting engine as a JSON HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// The [BasicRouter] wraps the whole mux, so preflight requests and unmatched paths pass through the stack too.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so a known path requested with the
// wrong method answers 405.
//
// # Middleware
//
// [New] installs, outermost first: [Recovery], [Logging], [CORS] and [APIKey]. The API key may be sent as
// X-API-Key or as a bearer token; /health is always public. An empty key disables the check.
//
// # Routes
//
//	GET    /health
//	GET    /api/candidates              POST /api/candidates
//	GET    /api/candidates/{id}         PUT  /api/candidates/{id}     DELETE /api/candidates/{id}
//	POST   /api/candidates/{id}/screen
//	GET    /api/jobs                    POST /api/jobs
//	GET    /api/jobs/{id}               PUT  /api/jobs/{id}           DELETE /api/jobs/{id}
//	GET    /api/applications            POST /api/applications
//	PATCH  /api/applications/{id}/stage
//	GET    /api/templates               POST /api/templates           DELETE /api/templates/{id}
//	POST   /api/email/batches           GET  /api/email/batches/{id}
//	GET    /api/interviews              POST /api/interviews
//	POST   /api/interviews/{id}/cancel
//	GET    /api/dashboard
//	GET    /api/export/pipeline.xlsx
//
// # Errors
//
// Failures are written as {"error": "..."}. Sentinel errors from the shared package choose the status:
// not found is 404, invalid input 400, duplicates 409, and workflow failures 502. Anything unmapped
// is a 500 with a generic message.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
