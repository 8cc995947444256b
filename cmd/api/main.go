package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reliefmatch/backend/internal/config"
	"reliefmatch/backend/internal/domain/dashboard"
	"reliefmatch/backend/internal/domain/match"
	"reliefmatch/backend/internal/domain/matching"
	"reliefmatch/backend/internal/domain/profile"
	"reliefmatch/backend/internal/domain/relay"
	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/domain/verification"
	"reliefmatch/backend/internal/firebase"
	"reliefmatch/backend/internal/geocode"
	"reliefmatch/backend/internal/handlers"
	apihttp "reliefmatch/backend/internal/http"
	"reliefmatch/backend/internal/jobs"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/push"
	"reliefmatch/backend/internal/realtime"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	defer clients.Close()

	var pub *push.Publisher
	if clients.Messaging != nil {
		pub = push.NewPublisher(clients.Messaging)
	}

	var geocoder geocode.Geocoder
	if cfg.MapsAPIKey != "" {
		g, err := geocode.NewMapsGeocoder(cfg.MapsAPIKey)
		if err != nil {
			log.Printf("geocoding disabled: %v", err)
		} else {
			geocoder = g
		}
	} else {
		log.Println("MAPS_API_KEY not set, address-only locations will be rejected")
	}

	// Repositories
	requestRepo := request.NewRepo(clients.Firestore)
	resourceRepo := resource.NewRepo(clients.Firestore)
	matchRepo := match.NewRepo(clients.Firestore)

	// Services
	requestSvc := request.NewService(requestRepo, geocoder, pub)
	resourceSvc := resource.NewService(resourceRepo, geocoder)
	matchSvc := match.NewService(matchRepo, pub)
	dashboardSvc := dashboard.NewService(requestSvc, resourceSvc, matching.New(cfg.MatchRadiusKm))
	profileSvc := profile.NewService(clients.Firestore, clients.Auth)
	verificationSvc := verification.NewService(clients.Firestore, clients.Auth, profileSvc, cfg.PublicBaseURL)

	// Relay: Firestore listeners -> feed + socket.io
	hub := relay.NewHub(cfg.RelayFeedCap)
	go hub.Run(ctx, relay.FirestoreSources(clients.Firestore)...)
	rt := realtime.New(hub, clients.Auth)
	go rt.Run(ctx)

	scheduler, err := jobs.Start(cfg.ReconcileSchedule, matchSvc)
	if err != nil {
		log.Fatalf("cron init failed: %v", err)
	}
	defer scheduler.Stop()

	owner := func(ctx context.Context, collection, id string) (string, error) {
		if collection == models.ColRequests {
			r, err := requestSvc.Get(ctx, models.RequestID(id))
			if err != nil {
				return "", err
			}
			return r.UserID, nil
		}
		r, err := resourceSvc.Get(ctx, models.ResourceID(id))
		if err != nil {
			return "", err
		}
		return r.UserID, nil
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:          cfg,
		Auth:         clients.Auth,
		RequestSvc:   requestSvc,
		ResourceSvc:  resourceSvc,
		MatchSvc:     matchSvc,
		DashboardSvc: dashboardSvc,
		ProfileSvc:   profileSvc,
		Hub:          hub,
		Sessions:     handlers.NewSessions(clients.Auth, cfg.SessionCookieTTL, strings.HasPrefix(cfg.PublicBaseURL, "https://")),
		Verification: handlers.NewVerification(verificationSvc),
		Claims:       handlers.NewClaims(clients.Auth, profileSvc),
		Uploads:      handlers.NewUploads(cfg, clients.Storage, owner),
		Realtime:     rt,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s, radius=%.0fkm)", cfg.Port, cfg.ProjectID, cfg.MatchRadiusKm)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Println("shutting down...")
	cancel()
	_ = srv.Shutdown(ctxShutdown)
}
