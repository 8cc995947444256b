package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/config"
	"reliefmatch/backend/internal/domain/profile"
	"reliefmatch/backend/internal/firebase"
	"reliefmatch/backend/internal/middleware"
	"reliefmatch/backend/internal/models"
)

func main() {
	uid := flag.String("uid", "", "target firebase uid")
	roleFlag := flag.String("role", string(models.RoleAdmin), "HELPER, SEEKER or ADMIN")
	flag.Parse()
	if *uid == "" {
		log.Fatal("uid is required: -uid=xxxxx")
	}
	role := models.Role(strings.ToUpper(strings.TrimSpace(*roleFlag)))
	if !role.Valid() {
		log.Fatalf("invalid role %q", *roleFlag)
	}

	ctx := context.Background()
	clients, err := firebase.NewClients(ctx, config.Load())
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	defer clients.Close()

	if err := clients.Auth.SetCustomUserClaims(ctx, *uid, middleware.ClaimsForRole(role)); err != nil {
		log.Fatalf("SetCustomUserClaims: %v", err)
	}

	// keep the stored profile in step when one exists
	operator := &authctx.Session{UID: "set-claims", Role: models.RoleAdmin}
	_, err = profile.NewService(clients.Firestore, clients.Auth).Update(ctx, operator, *uid, profile.UpdateProfileInput{Role: &role})
	switch {
	case profile.IsErrNotFound(err):
		log.Printf("no profile for %s yet; claims only", *uid)
	case err != nil:
		log.Fatalf("update profile: %v", err)
	}

	fmt.Printf("ok: role %s set for %s (user must refresh their ID token)\n", role, *uid)
}
