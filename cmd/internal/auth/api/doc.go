// Package api is the HTTP surface of srauth: login, token refresh, logout,
// and the authenticated profile endpoint.
//
// Tokens travel as cookies. Responses set access_token and refresh_token as
// HttpOnly cookies whose Expires matches the token expiry, and the
// CookieToBearer middleware promotes the access cookie into an
// Authorization: Bearer header before handlers run, so handler auth only
// ever sees bearer credentials. Error bodies use the {"detail": "..."}
// shape throughout.
package api
