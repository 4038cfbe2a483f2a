// Package services reads a user's Spotify library over the Web API.
//
// # Library Interface
//
// [LibraryService] is the read surface the export engine consumes. The only
// production implementation is [SpotifyService]; tests substitute a double.
//
// # Request Layer
//
// Every request funnels through [SpotifyService.Get]: it resolves relative
// paths against the API base, attaches the bearer token, optionally paces
// requests through a [rate.Limiter], and spends a bounded retry budget on
// transient failures. Rate-limit responses (429) back off harder than other
// transient errors because the server explicitly asked for it. A 401 is
// final: implicit grant tokens cannot be refreshed.
//
// [SpotifyService.List] walks paginated resources in next-link order. Each
// page's continuation URL arrives fully qualified, so only the first request
// carries caller params.
//
// # Authorization
//
// [SpotifyService.AuthURL] builds the implicit grant authorization URL,
// overriding the oauth2 package's response_type since the package assumes
// the code flow. The token comes back through the capture server in the
// server package, not through a token-endpoint exchange.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAuthFailed] : 401 or missing token, never retried
//   - [shared.ErrRateLimited] : 429, retried with extended backoff
//   - [shared.ErrAPIRequest] : other HTTP or transport failure, retried
//   - [shared.ErrInvalidJSON] : undecodable body, retried
//   - [shared.ErrRetriesExhausted] : budget spent, carries the last error and URL
//
// # Raw Access
//
// [APIService] performs single unretried requests for the api debug command,
// returning status, headers, and body verbatim.
package services
