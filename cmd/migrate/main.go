package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/okestore/storefront-sync/internal/identity"
	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/db"
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/migrate"
)

type options struct {
	set     string
	dir     string
	name    string
	version string
	email   string
	role    string
}

// session carries what a command may touch. db is nil for offline commands.
type session struct {
	cfg  *config.Config
	logg *logger.Logger
	opts options
	db   *db.Client
}

type command struct {
	offline bool
	run     func(ctx context.Context, s *session) error
}

var commands = map[string]command{
	"up":       {run: gooseCommand("up")},
	"down":     {run: gooseCommand("down")},
	"status":   {run: gooseCommand("status")},
	"version":  {run: migrateToVersion},
	"promote":  {run: promote},
	"create":   {offline: true, run: create},
	"validate": {offline: true, run: validate},
}

var sets = map[string]string{
	"accounts":   migrate.SetAccounts,
	"localstore": migrate.SetLocalStore,
}

func main() {
	_ = godotenv.Load()

	var opts options
	name := flag.String("cmd", "up", "migration command: "+strings.Join(commandNames(), "|"))
	flag.StringVar(&opts.set, "set", "accounts", "embedded migration set: accounts|localstore")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory on disk (create, validate)")
	flag.StringVar(&opts.name, "name", "", "migration name (create)")
	flag.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS (version)")
	flag.StringVar(&opts.email, "email", "", "account email (promote)")
	flag.StringVar(&opts.role, "role", string(enums.AccountRoleAdmin), "account role (promote)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	if err := run(context.Background(), logg, *name, opts); err != nil {
		logg.Error(context.Background(), "migrate failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, name string, opts options) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown -cmd %q (want %s)", name, strings.Join(commandNames(), "|"))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": name, "set": opts.set})

	s := &session{cfg: cfg, logg: logg, opts: opts}
	if !cmd.offline {
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer client.Close()
		s.db = client
	}

	if err := cmd.run(ctx, s); err != nil {
		return err
	}
	logg.Info(ctx, "migrate finished")
	return nil
}

func gooseCommand(name string) func(context.Context, *session) error {
	return func(ctx context.Context, s *session) error {
		set, sqlDB, err := s.target()
		if err != nil {
			return err
		}
		return migrate.Run(ctx, sqlDB, s.db.Driver(), set, name)
	}
}

func migrateToVersion(ctx context.Context, s *session) error {
	if s.opts.version == "" {
		return errors.New("-version is required")
	}
	set, sqlDB, err := s.target()
	if err != nil {
		return err
	}
	return migrate.MigrateToVersion(ctx, sqlDB, s.db.Driver(), set, s.opts.version)
}

func promote(ctx context.Context, s *session) error {
	if s.opts.email == "" {
		return errors.New("-email is required")
	}
	role, err := enums.ParseAccountRole(s.opts.role)
	if err != nil {
		return fmt.Errorf("-role: %w", err)
	}
	provider := identity.NewProvider(identity.Params{
		Accounts: identity.NewRepository(s.db.DB()),
		Password: s.cfg.Password,
		JWT:      s.cfg.JWT,
		Logger:   s.logg,
	})
	if err := provider.Promote(ctx, s.opts.email, role); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"email": s.opts.email, "role": string(role)}), "account role updated")
	return nil
}

func create(ctx context.Context, s *session) error {
	if s.opts.name == "" {
		return errors.New("-name is required")
	}
	path, err := migrate.CreateSQLMigration(s.opts.dir, s.opts.name)
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"path": path}), "migration created")
	return nil
}

func validate(_ context.Context, s *session) error {
	return errors.Join(migrate.ValidateEmbedded(), migrate.ValidateDir(s.opts.dir))
}

func (s *session) target() (string, *sql.DB, error) {
	set, ok := sets[s.opts.set]
	if !ok {
		return "", nil, fmt.Errorf("unknown -set %q", s.opts.set)
	}
	sqlDB, err := s.db.SQL()
	if err != nil {
		return "", nil, err
	}
	return set, sqlDB, nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
