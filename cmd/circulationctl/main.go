package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/openshelf/circulation-engine-go/circulation/postgresengine"
	"github.com/openshelf/circulation-engine-go/shell/config"
)

func main() {
	// Cancel context on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the persistent flag values shared by all subcommands.
type app struct {
	dsn         string
	replicaDSN  string
	tablePrefix string
	timeout     time.Duration
	verbose     bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "circulationctl",
		Short: "Operate a library circulation database from the command line",
		Long: `circulationctl issues, returns and renews book loans, takes fine payments,
and inspects overdue loans, member accounts and the circulation journal
of a circulation engine database.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.dsn, "dsn", config.PostgresSingleDSN(), "postgres DSN of the circulation database")
	root.PersistentFlags().StringVar(&a.replicaDSN, "replica-dsn", "", "optional replica DSN for eventually consistent reads")
	root.PersistentFlags().StringVar(&a.tablePrefix, "table-prefix", "", "prefix namespacing the circulation tables")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "per-operation timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log engine operations to stderr")

	root.AddCommand(
		newSchemaCmd(a),
		newIssueCmd(a),
		newReturnCmd(a),
		newRenewCmd(a),
		newPayCmd(a),
		newOverdueCmd(a),
		newMemberLoansCmd(a),
		newJournalCmd(a),
	)

	return root
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore connects to the configured database and builds the storage engine.
// The returned close function releases every pool that was opened.
func (a *app) openStore(ctx context.Context) (postgresengine.CirculationStore, func(), error) {
	var zero postgresengine.CirculationStore

	primary, err := openPool(ctx, a.dsn)
	if err != nil {
		return zero, nil, fmt.Errorf("connecting to primary: %w", err)
	}

	if a.replicaDSN == "" {
		store, buildErr := postgresengine.NewCirculationStoreFromPGXPool(primary, a.storeOptions()...)
		if buildErr != nil {
			primary.Close()
			return zero, nil, buildErr
		}

		return store, primary.Close, nil
	}

	replica, err := openPool(ctx, a.replicaDSN)
	if err != nil {
		primary.Close()
		return zero, nil, fmt.Errorf("connecting to replica: %w", err)
	}

	store, buildErr := postgresengine.NewCirculationStoreFromPGXPoolAndReplica(primary, replica, a.storeOptions()...)
	if buildErr != nil {
		primary.Close()
		replica.Close()
		return zero, nil, buildErr
	}

	closeAll := func() {
		primary.Close()
		replica.Close()
	}

	return store, closeAll, nil
}

func (a *app) storeOptions() []postgresengine.Option {
	logger := a.logger()
	options := []postgresengine.Option{
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(logger),
	}

	if a.tablePrefix != "" {
		options = append(options, postgresengine.WithTablePrefix(a.tablePrefix))
	}

	return options
}

func (a *app) operationContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := config.PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

func parseID(name string, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}

	return id, nil
}

func parseAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}

	if asOf, err := time.Parse("2006-01-02", value); err == nil {
		return asOf, nil
	}

	asOf, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as-of %q: use YYYY-MM-DD or RFC 3339", value)
	}

	return asOf, nil
}
