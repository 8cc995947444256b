package firebase

import (
	"context"
	"os"

	"reliefmatch/backend/internal/config"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// credentialOptions prefers FIREBASE_SERVICE_ACCOUNT_JSON (raw json content),
// then GOOGLE_APPLICATION_CREDENTIALS (service account json file path).
// On Cloud Run / GCP neither is needed; Application Default Credentials are used.
func credentialOptions() []option.ClientOption {
	opts := []option.ClientOption{}
	if json := getenv("FIREBASE_SERVICE_ACCOUNT_JSON", ""); json != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(json)))
	} else if cred := getenv("GOOGLE_APPLICATION_CREDENTIALS", ""); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}
	return opts
}

func NewApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	appCfg := &firebase.Config{}
	if cfg.ProjectID != "" {
		appCfg.ProjectID = cfg.ProjectID
	}
	if cfg.StorageBucket != "" {
		appCfg.StorageBucket = cfg.StorageBucket
	}
	return firebase.NewApp(ctx, appCfg, credentialOptions()...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
