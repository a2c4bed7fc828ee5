package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bookshelf/bookshelf/internal/auth"
	"github.com/bookshelf/bookshelf/internal/config"
	"github.com/bookshelf/bookshelf/internal/model"
	"github.com/bookshelf/bookshelf/internal/repository"
	"github.com/bookshelf/bookshelf/internal/service"
)

type output struct {
	SellerID    int64  `json:"seller_id"`
	Email       string `json:"e_mail"`
	Created     bool   `json:"created"`
	AccessToken string `json:"access_token,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		firstName   = flag.String("first-name", "Demo", "Seller first name")
		lastName    = flag.String("last-name", "Seller", "Seller last name")
		email       = flag.String("email", "demo@bookshelf.local", "Seller email (login key)")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Seller password (defaults to $BOOTSTRAP_PASSWORD)")
		issueToken  = flag.Bool("token", false, "Also print an access token signed with SECRET_KEY/ALGORITHM")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "password is required (-password or BOOTSTRAP_PASSWORD)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	seller, created, err := ensureSeller(ctx, repo, service.RegisterSellerInput{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  *password,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := output{
		SellerID: seller.ID,
		Email:    seller.Email,
		Created:  created,
	}

	if *issueToken {
		token, err := signToken(seller)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		out.AccessToken = token
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.SellerID)
		if out.AccessToken != "" {
			fmt.Println(out.AccessToken)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureSeller registers the seller unless the email is already taken.
// An existing account is returned as is; its password is not changed.
func ensureSeller(ctx context.Context, repo *repository.Repository, input service.RegisterSellerInput) (*model.Seller, bool, error) {
	existing, err := repo.GetSellerByEmail(ctx, input.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrSellerNotFound) {
		return nil, false, fmt.Errorf("lookup seller: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewSellerService(repo, auth.NewPasswordHasher(auth.DefaultArgon2Params()), nil, nil, quiet)

	seller, err := svc.Register(ctx, input)
	if err != nil {
		return nil, false, fmt.Errorf("register seller: %w", err)
	}
	return seller, true, nil
}

func signToken(seller *model.Seller) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	codec, err := auth.NewTokenCodec(cfg.TokenSettings())
	if err != nil {
		return "", err
	}
	return codec.IssueSeller(seller, cfg.AccessTokenTTL())
}
