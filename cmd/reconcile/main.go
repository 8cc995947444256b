// Command reconcile runs one match reconciliation pass and prints the report.
//
// With -link-request and -link-resource it first writes that pair through
// the unguarded two-write path, for backfilling matches agreed offline.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"reliefmatch/backend/internal/config"
	"reliefmatch/backend/internal/domain/match"
	"reliefmatch/backend/internal/firebase"
	"reliefmatch/backend/internal/models"
)

func main() {
	linkReq := flag.String("link-request", "", "request id to link before reconciling")
	linkRes := flag.String("link-resource", "", "resource id to link before reconciling")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()
	if (*linkReq == "") != (*linkRes == "") {
		log.Fatal("-link-request and -link-resource go together")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	clients, err := firebase.NewClients(ctx, config.Load())
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	defer clients.Close()

	repo := match.NewRepo(clients.Firestore)

	if *linkReq != "" {
		m, err := repo.InsertPair(ctx, match.Match{
			RequestID:  models.RequestID(*linkReq),
			ResourceID: models.ResourceID(*linkRes),
			Status:     models.MatchPending,
			CreatedBy:  "reconcile-cli",
		})
		if err != nil {
			log.Fatalf("link: %v", err)
		}
		log.Printf("linked match %s", m.ID)
	}

	rep, err := match.NewService(repo, nil).Reconcile(ctx)
	if err != nil {
		log.Fatalf("reconcile: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}
