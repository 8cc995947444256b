package handlers

import (
	"context"
	"net/http"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/domain/profile"
	"reliefmatch/backend/internal/httpjson"
	"reliefmatch/backend/internal/middleware"
	"reliefmatch/backend/internal/models"
)

// ClaimsSetter is the part of *auth.Client used to publish roles.
type ClaimsSetter interface {
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

type Claims struct {
	auth     ClaimsSetter
	profiles *profile.Service
}

func NewClaims(auth ClaimsSetter, profiles *profile.Service) *Claims {
	return &Claims{auth: auth, profiles: profiles}
}

// SyncUserClaims copies the caller's profile role into their token claims.
// The client must refresh its ID token afterwards.
func (h *Claims) SyncUserClaims(w http.ResponseWriter, r *http.Request) {
	uid, _ := authctx.UID(r.Context())

	p, err := h.profiles.Get(r.Context(), uid)
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "user profile not found")
		return
	}
	if err := h.auth.SetCustomUserClaims(r.Context(), uid, middleware.ClaimsForRole(p.Role)); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "failed to set claims")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{"ok": true, "role": p.Role})
}

type setRoleReq struct {
	UID  string      `json:"uid"`
	Role models.Role `json:"role"`
}

// SetUserRole is admin only: it updates the target profile and claims.
func (h *Claims) SetUserRole(w http.ResponseWriter, r *http.Request) {
	s, _ := authctx.FromContext(r.Context())
	if !s.IsAdmin() {
		httpjson.Error(w, http.StatusForbidden, "admin role required")
		return
	}

	var req setRoleReq
	if err := httpjson.Read(r, &req); err != nil || req.UID == "" {
		httpjson.Error(w, http.StatusBadRequest, "uid and role are required")
		return
	}
	p, err := h.profiles.Update(r.Context(), s, req.UID, profile.UpdateProfileInput{Role: &req.Role})
	switch {
	case profile.IsErrBadRequest(err):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case profile.IsErrNotFound(err):
		httpjson.Error(w, http.StatusNotFound, "user profile not found")
		return
	case err != nil:
		httpjson.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if err := h.auth.SetCustomUserClaims(r.Context(), req.UID, middleware.ClaimsForRole(p.Role)); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "failed to set claims")
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}
