package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/config"
	"reliefmatch/backend/internal/domain/dashboard"
	"reliefmatch/backend/internal/domain/match"
	"reliefmatch/backend/internal/domain/profile"
	"reliefmatch/backend/internal/domain/relay"
	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/handlers"
	"reliefmatch/backend/internal/httpjson"
	"reliefmatch/backend/internal/middleware"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/storeerr"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Cfg          config.Config
	Auth         middleware.TokenVerifier
	RequestSvc   *request.Service
	ResourceSvc  *resource.Service
	MatchSvc     *match.Service
	DashboardSvc *dashboard.Service
	ProfileSvc   *profile.Service
	Hub          *relay.Hub

	Sessions     *handlers.Sessions
	Verification *handlers.Verification
	Claims       *handlers.Claims
	Uploads      *handlers.Uploads
	// socket.io endpoint; optional
	Realtime http.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Public: verification landing + sign-in =====
	if d.Verification != nil {
		r.Get("/verify", d.Verification.Verify)
	}
	if d.Sessions != nil {
		r.Post("/v1/auth/session", d.Sessions.Create)
	}
	if d.Realtime != nil {
		r.Handle("/socket.io/*", d.Realtime)
	}

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Auth))

		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			out := map[string]any{"session": s, "profile": nil}
			if d.ProfileSvc != nil {
				p, err := d.ProfileSvc.Get(r.Context(), s.UID)
				switch {
				case err == nil:
					out["profile"] = p
				case !profile.IsErrNotFound(err):
					status, msg := mapProfileError(err)
					httpjson.Error(w, status, msg)
					return
				}
			}
			httpjson.Write(w, 200, out)
		})

		if d.Sessions != nil {
			pr.Delete("/v1/auth/session", d.Sessions.Delete)
		}
		if d.Verification != nil {
			pr.Post("/v1/auth/verification", d.Verification.Send)
		}
		if d.Claims != nil {
			pr.Post("/v1/auth/sync-claims", d.Claims.SyncUserClaims)
		}

		// ===== Profile routes =====
		pr.Post("/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in profile.CreateProfileInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.ProfileSvc.Create(r.Context(), s, in)
			if err != nil {
				status, msg := mapProfileError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		pr.Get("/v1/profiles/{uid}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ProfileSvc.Get(r.Context(), chi.URLParam(r, "uid"))
			if err != nil {
				status, msg := mapProfileError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Patch("/v1/profiles/{uid}", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in profile.UpdateProfileInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.ProfileSvc.Update(r.Context(), s, chi.URLParam(r, "uid"), in)
			if err != nil {
				status, msg := mapProfileError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		// ===== Request routes =====
		pr.Post("/v1/requests", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in request.CreateRequestInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.RequestSvc.Create(r.Context(), s, in)
			if err != nil {
				status, msg := mapRequestError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		pr.Get("/v1/requests", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			typ, ok := models.ParseCategory(q.Get("type"))
			if !ok {
				httpjson.Error(w, 400, "unknown type")
				return
			}
			in := request.ListRequestsInput{
				Type:   typ,
				Status: models.RequestStatus(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
				Query:  q.Get("q"),
				Limit:  queryInt(q.Get("limit")),
			}
			if q.Get("mine") == "1" || q.Get("mine") == "true" {
				in.UserID, _ = authctx.UID(r.Context())
			}
			out, err := d.RequestSvc.List(r.Context(), in)
			if err != nil {
				status, msg := mapRequestError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Get("/v1/requests/{requestId}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.RequestSvc.Get(r.Context(), models.RequestID(chi.URLParam(r, "requestId")))
			if err != nil {
				status, msg := mapRequestError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Patch("/v1/requests/{requestId}/status", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in request.UpdateStatusInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			st := models.RequestStatus(strings.ToUpper(strings.TrimSpace(string(in.Status))))
			out, err := d.RequestSvc.UpdateStatus(r.Context(), s, models.RequestID(chi.URLParam(r, "requestId")), st)
			if err != nil {
				status, msg := mapRequestError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Get("/v1/requests/{requestId}/candidates", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.DashboardSvc.Candidates(r.Context(), models.RequestID(chi.URLParam(r, "requestId")))
			if err != nil {
				status, msg := mapRequestError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		// ===== Resource routes =====
		pr.Post("/v1/resources", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in resource.CreateResourceInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.ResourceSvc.Create(r.Context(), s, in)
			if err != nil {
				status, msg := mapResourceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		pr.Get("/v1/resources", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			typ, ok := models.ParseCategory(q.Get("type"))
			if !ok {
				httpjson.Error(w, 400, "unknown type")
				return
			}
			in := resource.ListResourcesInput{
				Type:          typ,
				AvailableOnly: q.Get("available") == "1" || q.Get("available") == "true",
				Query:         q.Get("q"),
				Limit:         queryInt(q.Get("limit")),
			}
			if q.Get("mine") == "1" || q.Get("mine") == "true" {
				in.UserID, _ = authctx.UID(r.Context())
			}
			out, err := d.ResourceSvc.List(r.Context(), in)
			if err != nil {
				status, msg := mapResourceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Get("/v1/resources/{resourceId}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ResourceSvc.Get(r.Context(), models.ResourceID(chi.URLParam(r, "resourceId")))
			if err != nil {
				status, msg := mapResourceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Patch("/v1/resources/{resourceId}/availability", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in resource.UpdateAvailabilityInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.ResourceSvc.SetAvailability(r.Context(), s, models.ResourceID(chi.URLParam(r, "resourceId")), in.Availability)
			if err != nil {
				status, msg := mapResourceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		// ===== Matching =====
		pr.Get("/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.DashboardSvc.Build(r.Context(), r.URL.Query().Get("type"))
			if err != nil {
				status, msg := mapRequestError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Post("/v1/matches", func(w http.ResponseWriter, r *http.Request) {
			s, _ := authctx.FromContext(r.Context())
			var in match.CreateMatchInput
			if err := httpjson.Read(r, &in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			out, err := d.MatchSvc.Create(r.Context(), s, in)
			if err != nil {
				status, msg := mapMatchError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 201, out)
		})

		pr.Get("/v1/matches", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			out, err := d.MatchSvc.List(r.Context(), match.ListMatchesInput{
				RequestID:  models.RequestID(q.Get("requestId")),
				ResourceID: models.ResourceID(q.Get("resourceId")),
				Limit:      queryInt(q.Get("limit")),
			})
			if err != nil {
				status, msg := mapMatchError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		pr.Get("/v1/matches/{matchId}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.MatchSvc.Get(r.Context(), models.MatchID(chi.URLParam(r, "matchId")))
			if err != nil {
				status, msg := mapMatchError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Write(w, 200, out)
		})

		// ===== Relay feed =====
		pr.Get("/v1/updates", func(w http.ResponseWriter, r *http.Request) {
			httpjson.Write(w, 200, d.Hub.Snapshot())
		})

		if d.Uploads != nil {
			pr.Post("/v1/uploads/signed-url", d.Uploads.CreateSignedUploadURL)
		}

		// ===== Admin =====
		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin)

			ar.Post("/v1/admin/reconcile", func(w http.ResponseWriter, r *http.Request) {
				rep, err := d.MatchSvc.Reconcile(r.Context())
				if err != nil {
					status, msg := mapMatchError(err)
					httpjson.Error(w, status, msg)
					return
				}
				httpjson.Write(w, 200, rep)
			})

			ar.Delete("/v1/admin/updates", func(w http.ResponseWriter, r *http.Request) {
				d.Hub.Clear()
				w.WriteHeader(http.StatusNoContent)
			})

			if d.Claims != nil {
				ar.Post("/v1/admin/roles", d.Claims.SetUserRole)
			}
		})
	})

	return r
}

func queryInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func mapRequestError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case storeerr.IsRetryable(err):
		return 503, "temporarily unavailable, retry shortly"
	case request.IsErrUnauthorized(err):
		return 403, err.Error()
	case request.IsErrNotFound(err):
		return 404, "request not found"
	case request.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapResourceError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case storeerr.IsRetryable(err):
		return 503, "temporarily unavailable, retry shortly"
	case resource.IsErrUnauthorized(err):
		return 403, err.Error()
	case resource.IsErrNotFound(err):
		return 404, "resource not found"
	case resource.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapMatchError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case storeerr.IsRetryable(err):
		return 503, "temporarily unavailable, retry shortly"
	case match.IsErrUnauthorized(err):
		return 403, err.Error()
	case match.IsErrNotFound(err):
		return 404, err.Error()
	case match.IsErrConflict(err):
		return 409, err.Error()
	case match.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapProfileError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case storeerr.IsRetryable(err):
		return 503, "temporarily unavailable, retry shortly"
	case profile.IsErrUnauthorized(err):
		return 403, err.Error()
	case profile.IsErrNotFound(err):
		return 404, "profile not found"
	case profile.IsErrConflict(err):
		return 409, err.Error()
	case profile.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}
