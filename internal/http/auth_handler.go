package httpapi

import (
	"errors"
	"net/http"

	"medml-backend/internal/domain"
	"medml-backend/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 认证 Handler（admin 邮箱登录 / patient ABHA 登录）
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// RegisterAdmin 注册管理员账号
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		Designation   string `json:"designation"`
		ContactNumber string `json:"contact_number"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		writeJSON(w, http.StatusOK, Fail("name, email and password are required"))
		return
	}

	u, err := h.auth.RegisterAdmin(r.Context(), payload.Name, payload.Email, payload.Password,
		payload.Designation, payload.ContactNumber)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeJSON(w, http.StatusConflict, Fail(err.Error()))
			return
		}
		h.logger.Error("RegisterAdmin failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, Ok(u.ToJSON()))
}

// LoginAdmin 管理员登录
func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	pair, u, err := h.auth.LoginAdmin(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid email or password"))
			return
		}
		h.logger.Error("LoginAdmin failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          u.ToJSON(),
	}))
}

// LoginPatient 患者通过 ABHA ID 登录
func (h *AuthHandler) LoginPatient(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AbhaID   string `json:"abha_id"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	pair, p, err := h.auth.LoginPatient(r.Context(), payload.AbhaID, payload.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid ABHA ID or password"))
			return
		}
		h.logger.Error("LoginPatient failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"patient":       p.ToJSON(),
	}))
}

// Refresh 刷新令牌
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	pair, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			writeJSON(w, http.StatusUnauthorized, TokenExpired("refresh token expired"))
			return
		}
		writeJSON(w, http.StatusUnauthorized, Fail("invalid refresh token"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}))
}

// Me 当前登录主体
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	out, err := h.auth.Me(r.Context(), claims)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// Logout 注销（拉黑当前 token 直到自然过期）
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if err := h.auth.Logout(r.Context(), claims); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"logged_out": true}))
}
