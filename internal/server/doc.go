// Package server provides the throwaway local HTTP listener that completes
// the implicit grant flow.
//
// # Why a local server at all
//
// The implicit grant delivers the access token in the redirect URL's
// fragment. Fragments never leave the browser, so no server-side handler can
// read one directly. The [CaptureHandler] works around this in two hops:
// /redirect serves a page of client-side script that re-requests /token with
// the fragment rewritten into a query string, and /token pattern-matches the
// token out of that query.
//
// # Single-use lifecycle
//
// The listener binds the fixed registered redirect port, accepts exactly one
// successful capture, and is shut down by the caller the moment the result
// channel delivers. Malformed /token hits get a 400 and leave the handler
// listening; unknown paths get a 404; after capture everything gets a 404.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. [RequestLog] is the only middleware the
// capture flow installs; it stays silent below debug level, which keeps the
// listener quiet in normal runs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
package server
