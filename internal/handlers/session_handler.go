package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sanjitgh/authorization-server-side/internal/config"
	"github.com/sanjitgh/authorization-server-side/internal/events"
	"github.com/sanjitgh/authorization-server-side/internal/logger"
	usermodel "github.com/sanjitgh/authorization-server-side/internal/models/user"
	"github.com/sanjitgh/authorization-server-side/internal/service"
)

const AuthCookieName = "authToken"

type SessionHandler struct {
	sessions *service.SessionService
	producer *events.Producer
	log      *logger.Logger

	isProduction   bool
	cookieMaxAge   time.Duration
	rememberMaxAge time.Duration
}

// NewSessionHandler wires the session service to the HTTP surface. The
// producer may be nil; audit publishing is then skipped.
func NewSessionHandler(sessions *service.SessionService, producer *events.Producer, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		sessions:       sessions,
		producer:       producer,
		log:            logger.New("session-handler"),
		isProduction:   cfg.IsProduction(),
		cookieMaxAge:   cfg.Auth.CookieMaxAge,
		rememberMaxAge: cfg.Auth.CookieRememberMaxAge,
	}
}

type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	User    interface{} `json:"user,omitempty"`
}

func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req usermodel.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.sessions.Signup(r.Context(), &req)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "userName and password are required.")
		return
	case errors.Is(err, service.ErrShopNameTaken):
		respondError(w, http.StatusBadRequest, "One or more shop names already exist.")
		return
	case errors.Is(err, service.ErrUserNameTaken):
		respondError(w, http.StatusBadRequest, "Username already taken.")
		return
	case err != nil:
		h.log.Error("Signup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Server error.")
		return
	}

	h.publish(r, events.TypeSignup, user.ID, user.UserName)

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Signup successful.",
		Result:  user,
	})
}

func (h *SessionHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req usermodel.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	session, err := h.sessions.Signin(r.Context(), &req)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		h.publish(r, events.TypeSigninFailed, "", req.UserName)
		respondError(w, http.StatusBadRequest, "Invalid username.")
		return
	case errors.Is(err, service.ErrWrongPassword):
		h.publish(r, events.TypeSigninFailed, "", req.UserName)
		respondError(w, http.StatusBadRequest, "Invalid password.")
		return
	case err != nil:
		h.log.Error("Signin failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Server error.")
		return
	}

	maxAge := h.cookieMaxAge
	if req.Remember {
		maxAge = h.rememberMaxAge
	}
	http.SetCookie(w, h.sessionCookie(session.Token, int(maxAge.Seconds())))

	h.publish(r, events.TypeSignin, session.User.ID, session.User.UserName)

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Signin successful.",
		Result:  session.User,
	})
}

func (h *SessionHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	user, err := h.sessions.GetUserInfo(r.Context(), cookie.Value)
	switch {
	case errors.Is(err, service.ErrNoToken), errors.Is(err, service.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "Invalid or expired token.")
		return
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found.")
		return
	case err != nil:
		h.log.Error("Userinfo failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Server error.")
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		User:    user,
	})
}

// Logout clears the cookie with the same attributes it was set with. Tokens
// are stateless, so an already-copied token stays valid until it expires;
// logout only discards the client-held artifact.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))

	h.publish(r, events.TypeLogout, "", "")

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Logged out successfully.",
	})
}

// Liveness answers the root path with the same plaintext the original server
// used.
func (h *SessionHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Server is runing"))
}

func (h *SessionHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if h.isProduction {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: sameSite,
	}
}

func (h *SessionHandler) publish(r *http.Request, eventType, userID, userName string) {
	if h.producer == nil {
		return
	}

	event := &events.AuthEvent{
		Type:      eventType,
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().Unix(),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	if err := h.producer.Publish(r.Context(), event); err != nil {
		h.log.Warn("Failed to publish %s event: %v", eventType, err)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, apiResponse{
		Success: false,
		Message: message,
	})
}
