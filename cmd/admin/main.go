// Command admin provisions and inspects DeepTrust accounts directly against
// the configured database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"deeptrust-api/internal/core/config"
	"deeptrust-api/internal/core/database"
	"deeptrust-api/internal/core/logger"
	"deeptrust-api/internal/repo"
	"deeptrust-api/internal/service"
)

const usage = `usage: admin [-config path] <command> [flags]

commands:
  users                                 list accounts with usage
  create-user -username u -password p [-role user|admin] [-email e]
`

var errUsage = errors.New("invalid usage")

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", os.Getenv("CONFIG_PATH"), "config file (yaml)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		return err
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	users, err := openRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "users":
		return listUsers(ctx, users, rest, out)
	case "create-user":
		return createUser(ctx, users, rest, out)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// openRegistry brings the store up the same way the API does, seed admin included.
func openRegistry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*service.UserService, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := repo.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	users := service.NewUserService(store, store, log)
	if _, err := users.EnsureSeedAdmin(ctx, cfg.Seed.AdminPassword); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return users, nil
}

func listUsers(ctx context.Context, users *service.UserService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	views, err := users.ListWithUsage(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tSTATUS\tREQUESTS\tTOKENS\tLAST ACTIVE")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			v.ID, v.Username, v.Role, v.Status, v.Requests, v.Tokens, v.LastActive.Format(time.RFC3339))
	}
	return tw.Flush()
}

func createUser(ctx context.Context, users *service.UserService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "account name")
	password := fs.String("password", "", "initial password")
	role := fs.String("role", "", "user or admin (default user)")
	email := fs.String("email", "", "contact email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	u, err := users.CreateByAdmin(ctx, *username, *password, *role, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s (%s) id=%s\n", u.Username, u.Role, u.ID)
	return nil
}
