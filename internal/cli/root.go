// Package cli holds the cobra commands of the mtb terminal client.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/logger"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/receipt"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/service"
	"github.com/iliyamo/movie-ticket-booking/internal/session"
	"github.com/iliyamo/movie-ticket-booking/internal/tui"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// env is everything a command needs once configuration is loaded.
type env struct {
	cfg      config.Config
	log      *slog.Logger
	db       *sql.DB
	closeLog func() error
}

func (e *env) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	_ = e.closeLog()
}

// open loads the client configuration, builds the logger and connects to
// MySQL.  Logs go to LOG_FILE only so they do not disturb the menu.
func open() (*env, error) {
	cfg := config.LoadClient()
	lg, closeLog, err := logger.New(io.Discard, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &env{cfg: cfg, log: lg, db: db, closeLog: closeLog}, nil
}

// NewRootCmd builds the mtb command tree.
func NewRootCmd() *cobra.Command {
	var plain bool
	root := &cobra.Command{
		Use:           "mtb",
		Short:         "Movie ticket booking",
		Long:          `Book, check and cancel movie tickets from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()
			return runMenu(cmd.Context(), cmd, e, plain)
		},
	}
	root.Flags().BoolVar(&plain, "plain", false, "read answers line by line instead of interactive prompts")
	root.AddCommand(newMigrateCmd(), newConsumeCmd(), newVersionCmd())
	return root
}

func runMenu(ctx context.Context, cmd *cobra.Command, e *env, plain bool) error {
	if err := database.Migrate(e.db); err != nil {
		return err
	}
	bookings := &service.BookingService{
		Ledger:         service.NewLedger(repository.NewBookingRepo(e.db)),
		Receipts:       receipt.New(e.cfg.Receipt),
		Events:         service.NewPublisher(e.cfg.AMQP),
		Log:            e.log,
		MaxAdvanceDays: e.cfg.MaxAdvanceDays,
	}

	var (
		in     session.Prompter   = session.PromptUI{Stdin: os.Stdin, Stdout: os.Stdout}
		picker session.SeatPicker = tui.Picker{}
	)
	if plain {
		lines := session.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		in, picker = lines, session.LinePicker{In: lines, Out: cmd.OutOrStdout()}
	}
	m := &session.Menu{
		Accounts:       service.NewAccounts(repository.NewUserRepo(e.db), e.cfg.BcryptCost, e.log),
		Bookings:       bookings,
		Picker:         picker,
		In:             in,
		Out:            cmd.OutOrStdout(),
		Log:            e.log,
		MaxAdvanceDays: e.cfg.MaxAdvanceDays,
	}
	return m.Run(ctx)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()
			if err := database.Migrate(e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newConsumeCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append booking events from the queue to a log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadAMQPConfig()
			lg, closeLog, err := logger.New(cmd.ErrOrStderr(), os.Getenv("LOG_LEVEL"), "")
			if err != nil {
				return err
			}
			defer closeLog()
			c := &queue.Consumer{URL: cfg.URL, Queue: cfg.Queue, LogPath: path, Logger: lg}
			lg.Info("consuming booking events", "queue", cfg.Queue, "file", path)
			if err := c.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "logs/booking.log", "log file receiving the events")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mtb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mtb "+Version)
		},
	}
}
