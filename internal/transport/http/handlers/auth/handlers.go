package authhandler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffpay/internal/domain/auth"
	cryptoutil "staffpay/internal/platform/crypto"
	"staffpay/internal/transport/http/api"
	"staffpay/internal/transport/http/middleware"
)

type Handler struct {
	Store    *auth.Store
	Secret   string
	TokenTTL time.Duration
	Crypto   *cryptoutil.Service
}

func NewHandler(db *pgxpool.Pool, secret string, tokenTTL time.Duration, crypto *cryptoutil.Service) *Handler {
	return &Handler{Store: auth.NewStore(db), Secret: secret, TokenTTL: tokenTTL, Crypto: crypto}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Post("/refresh", h.handleRefresh)
		r.Post("/mfa/setup", h.handleMFASetup)
		r.Post("/mfa/enable", h.handleMFAEnable)
		r.Post("/mfa/disable", h.handleMFADisable)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Store.UserByEmail(r.Context(), strings.TrimSpace(payload.Email))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	if user.MFAEnabled {
		if payload.MFACode == "" {
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", middleware.GetRequestID(r.Context()))
			return
		}
		secret, err := h.mfaSecret(user.MFASecretEnc)
		if err != nil || secret == "" || !auth.VerifyMFACode(secret, payload.MFACode) {
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", middleware.GetRequestID(r.Context()))
			return
		}
	}

	sessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.CreateSession(r.Context(), user.ID, auth.HashToken(sessionID), time.Now().Add(h.TokenTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", middleware.GetRequestID(r.Context()))
		return
	}

	identity := auth.UserContext{UserID: user.ID, CompanyID: user.CompanyID, StaffID: user.StaffID, Role: user.Role}
	token, err := auth.IssueToken(h.Secret, identity, sessionID, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":        user.ID,
			"companyId": user.CompanyID,
			"staffId":   user.StaffID,
			"role":      user.Role,
		},
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.bearerClaims(r)
	if ok && claims.SessionID != "" {
		if err := h.Store.RevokeSession(r.Context(), claims.UserID, auth.HashToken(claims.SessionID)); err != nil {
			slog.Warn("logout session revoke failed", "userId", claims.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.bearerClaims(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	valid, err := h.Store.SessionValid(r.Context(), claims.UserID, auth.HashToken(claims.SessionID))
	if err != nil || !valid {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", middleware.GetRequestID(r.Context()))
		return
	}

	newSessionID, err := generateToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to rotate session", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.RotateSession(r.Context(), claims.UserID, auth.HashToken(claims.SessionID), auth.HashToken(newSessionID), time.Now().Add(h.TokenTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to rotate session", middleware.GetRequestID(r.Context()))
		return
	}

	identity := auth.UserContext{UserID: claims.UserID, CompanyID: claims.CompanyID, StaffID: claims.StaffID, Role: claims.Role}
	token, err := auth.IssueToken(h.Secret, identity, newSessionID, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"token": token}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	account, err := h.Store.UserByID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to prepare mfa", middleware.GetRequestID(r.Context()))
		return
	}

	secret, provisioningURL, err := auth.GenerateMFASecret(account.Email)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to prepare mfa", middleware.GetRequestID(r.Context()))
		return
	}

	stored := []byte(secret)
	if h.Crypto != nil && h.Crypto.Configured() {
		stored, err = h.Crypto.EncryptString(secret)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to prepare mfa", middleware.GetRequestID(r.Context()))
			return
		}
	}
	if err := h.Store.UpdateMFASecret(r.Context(), user.UserID, stored); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to prepare mfa", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"secret": secret, "provisioningUrl": provisioningURL}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Code == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "mfa code required", middleware.GetRequestID(r.Context()))
		return
	}

	account, err := h.Store.UserByID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_enable_failed", "failed to enable mfa", middleware.GetRequestID(r.Context()))
		return
	}
	secret, err := h.mfaSecret(account.MFASecretEnc)
	if err != nil || secret == "" || !auth.VerifyMFACode(secret, payload.Code) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.SetMFAEnabled(r.Context(), user.UserID, true); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_enable_failed", "failed to enable mfa", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "mfa_enabled"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.SetMFAEnabled(r.Context(), user.UserID, false); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_disable_failed", "failed to disable mfa", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "mfa_disabled"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) bearerClaims(r *http.Request) (auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.Claims{}, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return auth.Claims{}, false
	}
	claims, err := auth.ParseToken(h.Secret, parts[1])
	if err != nil {
		return auth.Claims{}, false
	}
	return claims, true
}

func (h *Handler) mfaSecret(stored []byte) (string, error) {
	if len(stored) == 0 {
		return "", nil
	}
	if h.Crypto != nil && h.Crypto.Configured() {
		return h.Crypto.DecryptString(stored)
	}
	return string(stored), nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
