// Package clinicianctl implements the operator-facing command for
// registering clinician accounts directly against the database, without
// going through the HTTP endpoint.
package clinicianctl

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sara-git-hub/diabcare/internal/logging"
	"github.com/sara-git-hub/diabcare/internal/server/config"
	"github.com/sara-git-hub/diabcare/internal/server/repositories/repomanager"
	"github.com/sara-git-hub/diabcare/internal/server/services"
)

// Options holds the command-line options for a clinicianctl run.
type Options struct {
	DatabaseDSN string
	Username    string
}

// ParseFlags reads options from args. The DSN defaults to the server's
// development default so the command works out of the box against a
// local database.
func ParseFlags(args []string) (*Options, error) {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	opts := &Options{}
	fs := flag.NewFlagSet("clinicianctl", flag.ContinueOnError)
	fs.StringVar(&opts.DatabaseDSN, "d", defaults.DatabaseDSN, "database DSN")
	fs.StringVar(&opts.Username, "n", "", "clinician username to register")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.Username == "" {
		return nil, errors.New("username is required (-n)")
	}
	return opts, nil
}

// Run registers a clinician account. The password is read from the
// terminal without echo. Migrations are applied first so the command can
// bootstrap an empty database.
func Run(ctx context.Context, opts *Options, w io.Writer) error {
	slogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(slogger)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = opts.DatabaseDSN

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	password, err := GetPassword(w)
	if err != nil {
		return err
	}

	us := services.NewUserService(db, rm, cfg, logger)
	user, err := us.Register(ctx, opts.Username, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "clinician %q registered (id %s)\n", user.Username, user.ID)
	return nil
}
