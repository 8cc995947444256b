package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/config"
	"reliefmatch/backend/internal/httpjson"
	"reliefmatch/backend/internal/models"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// OwnerFunc returns the uid that owns a request or resource.
type OwnerFunc func(ctx context.Context, collection, id string) (string, error)

type Uploads struct {
	cfg    config.Config
	bucket *storage.BucketHandle
	iam    *credentials.IamCredentialsClient
	owner  OwnerFunc
}

func NewUploads(cfg config.Config, st *storage.Client, owner OwnerFunc) *Uploads {
	// IAM client is optional; only needed for signed URLs.
	iamClient, _ := credentials.NewIamCredentialsClient(context.Background())
	var bucket *storage.BucketHandle
	if st != nil && cfg.StorageBucket != "" {
		bucket = st.Bucket(cfg.StorageBucket)
	}
	return &Uploads{cfg: cfg, bucket: bucket, iam: iamClient, owner: owner}
}

type signedURLReq struct {
	ObjectPath     string `json:"objectPath"` // e.g. "requests/{requestId}/photo.jpg"
	ContentType    string `json:"contentType,omitempty"`
	ExpiresSeconds int64  `json:"expiresSeconds,omitempty"` // default 900
}

type signedURLResp struct {
	URL        string `json:"url"`
	Method     string `json:"method"`
	ObjectPath string `json:"objectPath"`
	ExpiresAt  int64  `json:"expiresAt"`
}

// CreateSignedUploadURL signs a PUT for a photo attached to one of the
// caller's requests or resources.
func (h *Uploads) CreateSignedUploadURL(w http.ResponseWriter, r *http.Request) {
	s, _ := authctx.FromContext(r.Context())

	var req signedURLReq
	if err := httpjson.Read(r, &req); err != nil || req.ObjectPath == "" {
		httpjson.Error(w, http.StatusBadRequest, "objectPath is required")
		return
	}

	collection, id, err := parseObjectPath(req.ObjectPath)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	owner, err := h.owner(r.Context(), collection, id)
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, collection+" not found")
		return
	}
	if owner != s.UID && !s.IsAdmin() {
		httpjson.Error(w, http.StatusForbidden, "not your "+strings.TrimSuffix(collection, "s"))
		return
	}

	url, exp, err := h.signedURL(r.Context(), req.ObjectPath, req.ContentType, req.ExpiresSeconds)
	if err != nil {
		httpjson.Error(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, signedURLResp{URL: url, Method: "PUT", ObjectPath: req.ObjectPath, ExpiresAt: exp.Unix()})
}

// parseObjectPath accepts "requests/{id}/{file}" and "resources/{id}/{file}".
func parseObjectPath(p string) (collection, id string, err error) {
	if strings.Contains(p, "..") || strings.HasPrefix(p, "/") || path.Clean(p) != p {
		return "", "", fmt.Errorf("invalid objectPath")
	}
	parts := strings.SplitN(p, "/", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("objectPath must be <requests|resources>/<id>/<file>")
	}
	switch parts[0] {
	case models.ColRequests, models.ColResources:
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("objectPath must start with requests/ or resources/")
}

func (h *Uploads) signedURL(ctx context.Context, objectPath, contentType string, expiresSeconds int64) (string, time.Time, error) {
	if h.bucket == nil {
		return "", time.Time{}, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}
	if h.cfg.SignedURLServiceAccountEmail == "" {
		return "", time.Time{}, fmt.Errorf("SIGNED_URL_SERVICE_ACCOUNT_EMAIL is not set")
	}
	if h.iam == nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client not available")
	}
	if expiresSeconds <= 0 || expiresSeconds > 3600 {
		expiresSeconds = 900
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	exp := time.Now().Add(time.Duration(expiresSeconds) * time.Second)

	// V4 signed URL for PUT (upload).
	url, err := h.bucket.SignedURL(objectPath, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodPut,
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: h.cfg.SignedURLServiceAccountEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := h.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    "projects/-/serviceAccounts/" + h.cfg.SignedURLServiceAccountEmail,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}
	return url, exp, nil
}
