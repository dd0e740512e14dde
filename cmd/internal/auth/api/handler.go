package api

import (
	"log/slog"
	"net/http"

	"srauth/cmd/identity"
	"srauth/cmd/internal/auth/session"
	"srauth/cmd/internal/auth/token"
)

// Handler serves the auth endpoints.
type Handler struct {
	cfg      Config
	sessions *session.Service
	users    identity.Store
	log      *slog.Logger
}

// NewHandler constructs a Handler. A nil logger falls back to slog.Default.
func NewHandler(cfg Config, sessions *session.Service, users identity.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{cfg: cfg, sessions: sessions, users: users, log: log}
}

// Register mounts the auth routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /token/refresh", h.handleRefresh)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("GET /profile", h.handleProfile)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// One message for every failure mode; no account probing.
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	h.setTokenCookie(w, h.cfg.AccessCookieName, sess.Access.Token, sess.Access.ExpiresAt)
	h.setTokenCookie(w, h.cfg.RefreshCookieName, sess.Refresh.Token, sess.Refresh.ExpiresAt)

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User: userSummary{
			ID:       sess.User.ID,
			Username: sess.User.Username,
			Email:    sess.User.Email,
			Role:     sess.User.RoleName(),
		},
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := cookieValue(r, h.cfg.RefreshCookieName)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Refresh token missing in cookies")
		return
	}

	ref, err := h.sessions.Refresh(r.Context(), raw)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	h.setTokenCookie(w, h.cfg.AccessCookieName, ref.Access.Token, ref.Access.ExpiresAt)
	if ref.Refresh != nil {
		h.setTokenCookie(w, h.cfg.RefreshCookieName, ref.Refresh.Token, ref.Refresh.ExpiresAt)
	}

	writeJSON(w, http.StatusOK, refreshResponse{Message: "Access token refreshed"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw, ok := cookieValue(r, h.cfg.RefreshCookieName); ok {
		h.sessions.Logout(r.Context(), raw)
	}

	// Cookies are cleared no matter what the revocation side did.
	h.expireCookie(w, h.cfg.AccessCookieName)
	h.expireCookie(w, h.cfg.RefreshCookieName)
	w.WriteHeader(http.StatusResetContent)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	// Role comes from the identity record, not the token, so staff changes
	// take effect without waiting out token expiry.
	user, err := h.users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if identity.IsNotFound(err) {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		h.log.ErrorContext(r.Context(), "auth.profile.lookup_fail", "error", err.Error())
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, userSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.RoleName(),
	})
}

// requireAuth authenticates the request from its bearer credential (set
// directly or promoted from the access cookie by CookieToBearer). On
// failure it writes the 401 response and returns ok=false.
func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (token.Claims, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided")
		return token.Claims{}, false
	}

	claims, err := h.sessions.VerifyAccess(raw)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
		return token.Claims{}, false
	}
	return claims, true
}
