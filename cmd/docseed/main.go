// Package main provides a CLI tool for seeding customer and ticket documents
// into a shared document store so a webshop session has something to watch.
// It talks to the backend configured by DOCSTORE_BACKEND and is meant for
// local development only.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"webshop/internal/docstore"
	"webshop/internal/platform/config"
	"webshop/internal/platform/database"
	redisclient "webshop/internal/platform/redis"
	"webshop/pkg/domain"
)

func main() {
	profileCmd := flag.NewFlagSet("profile", flag.ExitOnError)
	ticketCmd := flag.NewFlagSet("ticket", flag.ExitOnError)
	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)

	profileAccount := profileCmd.String("account", "", "Account ID (the identity token subject)")
	profileFirst := profileCmd.String("first-name", "Kari", "First name")
	profileLast := profileCmd.String("last-name", "Nordmann", "Surname")
	profileEmail := profileCmd.String("email", "", "Email address")
	profilePhone := profileCmd.String("phone", "", "Phone number in E.164 form")
	profileCard := profileCmd.Int64("travel-card", 0, "Travel card number (omitted when 0)")

	ticketAccount := ticketCmd.String("account", "", "Account ID owning the ticket")
	ticketProduct := ticketCmd.String("product", "ATB:PreassignedFareProduct:single", "Fare product reference")
	ticketStart := ticketCmd.Duration("starts-in", 0, "Offset from now when the travel right starts")
	ticketTTL := ticketCmd.Duration("ttl", time.Hour, "Travel right duration")
	ticketAmount := ticketCmd.String("amount", "42.00", "Total amount")

	revokePrefix := revokeCmd.String("account", "", "Account ID whose live watches lose access")
	deleteAccount := deleteCmd.String("account", "", "Account ID whose customer document is removed")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.FromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "profile":
		profileCmd.Parse(os.Args[2:])
		withStore(ctx, cfg, func(store docstore.Store) error {
			return seedProfile(ctx, store, cfg.DocStore, requireAccount(*profileAccount), profileFields{
				firstName:  *profileFirst,
				surname:    *profileLast,
				email:      *profileEmail,
				phone:      *profilePhone,
				travelCard: *profileCard,
			})
		})
	case "ticket":
		ticketCmd.Parse(os.Args[2:])
		withStore(ctx, cfg, func(store docstore.Store) error {
			start := time.Now().Add(*ticketStart)
			return seedTicket(ctx, store, cfg.DocStore, requireAccount(*ticketAccount), *ticketProduct, *ticketAmount, start, start.Add(*ticketTTL))
		})
	case "revoke":
		revokeCmd.Parse(os.Args[2:])
		withStore(ctx, cfg, func(store docstore.Store) error {
			prefix := docstore.DocumentPath(cfg.DocStore.CustomerCollection, requireAccount(*revokePrefix).String())
			return store.Revoke(ctx, prefix)
		})
	case "delete":
		deleteCmd.Parse(os.Args[2:])
		withStore(ctx, cfg, func(store docstore.Store) error {
			path := docstore.DocumentPath(cfg.DocStore.CustomerCollection, requireAccount(*deleteAccount).String())
			return store.Delete(ctx, path)
		})
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`docseed - Seed webshop documents for local development

The backend is chosen by DOCSTORE_BACKEND (redis or postgres); the memory
backend lives inside the server process and cannot be seeded from outside.

Usage:
  docseed <command> [flags]

Commands:
  profile   Write a customer document
  ticket    Add a fare contract under a customer
  revoke    Fail the live watches of a customer with a permission error
  delete    Remove a customer document

Examples:
  # Create the customer document for a signed-in account
  DOCSTORE_BACKEND=redis REDIS_URL=redis://localhost:6379 \
    docseed profile -account abc123 -email kari@example.com

  # Add a ticket that becomes valid in ten minutes
  docseed ticket -account abc123 -starts-in 10m -ttl 2h

  # Simulate losing document access
  docseed revoke -account abc123

Use "docseed <command> -h" for more information about a command.`)
}

func requireAccount(raw string) domain.AccountID {
	id, err := domain.ParseAccountID(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -account: %v\n", err)
		os.Exit(1)
	}
	return id
}

// withStore opens the configured backend, runs fn and exits non-zero on failure.
func withStore(ctx context.Context, cfg config.Server, fn func(docstore.Store) error) {
	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening document store: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	if err := fn(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Server) (docstore.Store, func(), error) {
	switch cfg.DocStore.Backend {
	case "redis":
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, fmt.Errorf("REDIS_URL is required for the redis backend")
		}
		return docstore.NewRedis(client.Client), func() { _ = client.Close() }, nil
	case "postgres":
		pool, err := database.New(ctx, database.Config{URL: cfg.Database.URL, MaxConns: 2})
		if err != nil {
			return nil, nil, err
		}
		if pool == nil {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		return docstore.NewPostgres(pool.PGX(), nil), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("DOCSTORE_BACKEND %q cannot be seeded from outside the server", cfg.DocStore.Backend)
	}
}

type profileFields struct {
	firstName  string
	surname    string
	email      string
	phone      string
	travelCard int64
}

func seedProfile(ctx context.Context, store docstore.Store, cfg config.DocStore, account domain.AccountID, f profileFields) error {
	now := domain.BackendTimeOf(time.Now())
	doc := map[string]any{
		"firstName": f.firstName,
		"surname":   f.surname,
		"email":     f.email,
		"phone":     f.phone,
		"consents":  []any{},
		"created":   now,
	}
	if f.travelCard != 0 {
		expires := domain.BackendTimeOf(time.Now().AddDate(5, 0, 0))
		doc["travelcard"] = map[string]any{"id": f.travelCard, "expires": expires}
	}

	path := docstore.DocumentPath(cfg.CustomerCollection, account.String())
	if err := put(ctx, store, path, doc); err != nil {
		return err
	}
	fmt.Printf("Wrote customer %s\n", path)
	return nil
}

func seedTicket(ctx context.Context, store docstore.Store, cfg config.DocStore, account domain.AccountID, product, amount string, start, end time.Time) error {
	id := uuid.NewString()
	doc := map[string]any{
		"orderId":     uuid.NewString()[:8],
		"created":     domain.BackendTimeOf(time.Now()),
		"state":       2,
		"totalAmount": amount,
		"currency":    "NOK",
		"paymentType": []int{1},
		"travelRights": []map[string]any{{
			"id":             uuid.NewString(),
			"type":           "PreActivatedSingleTicket",
			"status":         5,
			"fareProductRef": product,
			"userProfileRef": "ATB:UserProfile:adult",
			"startDateTime":  domain.BackendTimeOf(start),
			"endDateTime":    domain.BackendTimeOf(end),
		}},
	}

	path := docstore.DocumentPath(cfg.CustomerCollection, account.String(), cfg.FareContracts, id)
	if err := put(ctx, store, path, doc); err != nil {
		return err
	}
	fmt.Printf("Wrote fare contract %s (valid %s to %s)\n", path, start.Format(time.RFC3339), end.Format(time.RFC3339))
	return nil
}

func put(ctx context.Context, store docstore.Store, path string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return store.Set(ctx, path, data)
}
