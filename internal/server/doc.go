// Package server runs the local HTTP listener used by `gnx auth login`.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack.
// Middleware is applied in reverse order, so the first one added is the outermost.
// [RequestLogger] logs each request through charmbracelet/log.
//
// # OAuth callback
//
// [OAuthHandler] completes the Google installed-app flow: it checks the state token,
// exchanges the authorization code and delivers exactly one [OAuthResult] on its channel.
// Later callbacks are rejected.
package server
