package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/migrate"
	"socialhub.dev/internal/obs"
	"socialhub.dev/internal/social"
	"socialhub.dev/internal/store/pg"
)

const usage = "usage: migrate [flags] up|down|seed|status|admin-password <email> <password>"

func main() {
	_ = godotenv.Load()

	var (
		dsn            = flag.String("dsn", os.Getenv("PG_DSN"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", os.Getenv("MIGRATIONS_DIR"), "directory of SQL migrations (default: bundled)")
		seedsPath      = flag.String("seeds", os.Getenv("SEEDS_DIR"), "directory of SQL seeds (default: bundled)")
		timeout        = flag.Duration("timeout", 30*time.Second, "overall timeout")
	)
	flag.Parse()

	logger := obs.NewLogger(os.Stderr, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
	obs.SetLogger(logger)

	if *dsn == "" {
		logger.Error("missing DSN: provide via -dsn or PG_DSN")
		os.Exit(2)
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := pg.Open(ctx, *dsn, pg.PoolConfig{})
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	mgr := migrate.NewManager(store.DB(), migrate.WithDirs(*migrationsPath, *seedsPath))

	cmd := flag.Arg(0)
	switch cmd {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	case "admin-password":
		if flag.NArg() != 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		err = setPassword(ctx, store.Users(), flag.Arg(1), flag.Arg(2))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migrate failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// setPassword replaces the password of an existing account, e.g. the seeded admin.
func setPassword(ctx context.Context, users social.UserStore, email, password string) error {
	u, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if u == nil {
		return errors.New("no account with that email")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = users.UpdateUser(ctx, u.ID, social.UserUpdate{PasswordHash: &hash})
	return err
}
