package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	SignedURLServiceAccountEmail string
	PublicBaseURL                string
	MapsAPIKey                   string

	// Matching / relay
	MatchRadiusKm     float64
	RelayFeedCap      int
	ReconcileSchedule string

	SessionCookieTTL time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	// FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),
		PublicBaseURL:                strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		MapsAPIKey:                   getenv("MAPS_API_KEY", ""),
		MatchRadiusKm:                getFloat("MATCH_RADIUS_KM", 25),
		RelayFeedCap:                 getInt("RELAY_FEED_CAP", 10),
		ReconcileSchedule:            getenv("RECONCILE_SCHEDULE", "*/15 * * * *"),
		SessionCookieTTL:             getDuration("SESSION_COOKIE_TTL", 120*time.Hour),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 {
		log.Printf("[config] invalid %s=%q, using %v", key, v, def)
		return def
	}
	return f
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
