package handlers

import (
	"net/http"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/domain/verification"
	"reliefmatch/backend/internal/httpjson"
	"reliefmatch/backend/internal/storeerr"
)

type Verification struct {
	svc *verification.Service
}

func NewVerification(svc *verification.Service) *Verification {
	return &Verification{svc: svc}
}

type verifyResp struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Verify handles the mailed link: GET /verify?userId=...&secret=...
// The landing page reads {"status": ...} rather than the error envelope.
// Bad links are final; the user has to request a new one.
func (h *Verification) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.svc.Verify(r.Context(), q.Get("userId"), q.Get("secret"))
	switch {
	case err == nil:
		httpjson.Write(w, http.StatusOK, verifyResp{Status: "success"})
	case verification.IsErrBadRequest(err), verification.IsErrInvalidLink(err):
		httpjson.Write(w, http.StatusBadRequest, verifyResp{Status: "error", Message: "verification failed, request a new link"})
	case storeerr.IsRetryable(err):
		w.Header().Set("Retry-After", "5")
		httpjson.Write(w, http.StatusServiceUnavailable, verifyResp{Status: "error", Message: "temporarily unavailable, try again"})
	default:
		httpjson.Write(w, http.StatusInternalServerError, verifyResp{Status: "error", Message: "verification failed"})
	}
}

// Send mails a fresh link to the caller's address.
func (h *Verification) Send(w http.ResponseWriter, r *http.Request) {
	s, _ := authctx.FromContext(r.Context())
	if s.EmailVerified {
		httpjson.Write(w, http.StatusOK, verifyResp{Status: "already_verified"})
		return
	}
	if s.Email == "" {
		httpjson.Error(w, http.StatusBadRequest, "account has no email address")
		return
	}
	if err := h.svc.Create(r.Context(), s.UID, s.Email); err != nil {
		status := http.StatusInternalServerError
		if storeerr.IsRetryable(err) {
			status = http.StatusServiceUnavailable
		}
		httpjson.Error(w, status, "failed to send verification email")
		return
	}
	httpjson.Write(w, http.StatusAccepted, verifyResp{Status: "sent"})
}
