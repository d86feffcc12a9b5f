// ABOUTME: Entry point for the dealboard CRM
// ABOUTME: Routes to the web board, terminal board, MCP server, or CLI commands based on arguments
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/dealboard/charm"
	"github.com/harperreed/dealboard/cli"
	"github.com/harperreed/dealboard/config"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/logging"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/harperreed/dealboard/web"
)

const version = "0.2.0"

// app holds what every store-backed command needs.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   db.RecordStore
	board   *pipeline.Board
	metrics *web.Metrics
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/dealboard/config.yaml)")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/dealboard/dealboard.db)")
	backend := flag.String("store", "", "Record store backend: sql, memory, or kv")
	port := flag.Int("port", 0, "HTTP port for serve (default: 8080)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	initOnly := flag.Bool("init", false, "Initialize the store and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("dealboard version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	cfg.Apply(config.Flags{DBPath: *dbPath, Backend: *backend, Port: *port, LogLevel: *logLevel})
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", "err", err)
	}

	// stdout belongs to MCP and CLI output
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal("failed to build logger", "err", err)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(logger, dispatch(ctx, cfg, logger, args, *initOnly))
	stop()
	os.Exit(code)
}

// dispatch runs one command. Every deferred cleanup has run by the time it
// returns, so main can exit without skipping any.
func dispatch(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string, initOnly bool) error {
	// commands that do not touch the record store
	if len(args) > 0 {
		switch args[0] {
		case "kv":
			return runKV(cfg, args[1:])
		case "sync":
			if len(args) > 1 && args[1] == "init" {
				return cli.SyncInitCommand(ctx, args[2:])
			}
		}
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	return a.execute(ctx, args, initOnly)
}

// execute runs a store-backed command and closes the store afterwards,
// whether or not the command failed.
func (a *app) execute(ctx context.Context, args []string, initOnly bool) (err error) {
	defer func() {
		if cerr := a.store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", cerr)
		}
	}()

	if initOnly {
		a.logger.Info("store initialized", "backend", a.cfg.Store.Backend)
		return nil
	}
	return a.run(ctx, args[0], args[1:])
}

// exitCode logs a failed command and picks the process exit status.
func exitCode(logger *log.Logger, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	logger.Error("command failed", "err", err)
	return 1
}

// newApp opens the configured backend and builds the board over it.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Seed {
		if err := seedIfEmpty(ctx, store); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	metrics := web.NewMetrics()
	opts := append([]pipeline.Option{pipeline.WithLogger(logger)}, metrics.BoardOptions()...)
	board := pipeline.NewBoard(store, opts...)
	return &app{cfg: cfg, logger: logger, store: store, board: board, metrics: metrics}, nil
}

func openStore(cfg *config.Config) (db.RecordStore, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return db.NewMemoryStore(), nil
	case config.BackendKV:
		client, err := charm.Open(&cfg.Charm)
		if err != nil {
			return nil, err
		}
		return charm.NewStore(client), nil
	default:
		return db.Open(cfg.DB.Driver, cfg.DataSource())
	}
}

func seedIfEmpty(ctx context.Context, store db.RecordStore) error {
	contacts, err := store.ListContacts(ctx)
	if err != nil {
		return err
	}
	deals, err := store.ListDeals(ctx)
	if err != nil {
		return err
	}
	if len(contacts) > 0 || len(deals) > 0 {
		return nil
	}
	return db.SeedDemoData(ctx, store)
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "serve":
		server, err := web.NewServer(a.store, a.board, a.logger, a.metrics)
		if err != nil {
			return err
		}
		return server.Start(ctx, a.cfg.HTTP.Port)

	case "board", "tui":
		return cli.BoardCommand(ctx, a.board, a.store, args)

	case "mcp":
		return cli.MCPCommand(ctx, a.store, a.board, a.logger, version)

	case "crm":
		if len(args) == 0 {
			printUsage()
			return fmt.Errorf("crm requires a subcommand")
		}
		return a.runCRM(ctx, args[0], args[1:])

	case "viz":
		return a.runViz(ctx, args)

	case "export":
		blobs, err := cli.OpenBlobStore(ctx, a.cfg.Export)
		if err != nil {
			return err
		}
		if len(args) > 0 && args[0] == "list" {
			return cli.ExportListCommand(ctx, blobs, args[1:])
		}
		return cli.ExportCommand(ctx, a.board, blobs, args)

	case "sync":
		if len(args) == 0 || args[0] != "contacts" {
			printUsage()
			return fmt.Errorf("sync requires a subcommand: init or contacts")
		}
		return cli.SyncContactsCommand(ctx, a.store, a.logger, args[1:])

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) runCRM(ctx context.Context, command string, args []string) error {
	switch command {
	// Contact commands
	case "add-contact":
		return cli.AddContactCommand(ctx, a.store, args)
	case "list-contacts":
		return cli.ListContactsCommand(ctx, a.store, args)
	case "update-contact":
		return cli.UpdateContactCommand(ctx, a.store, args)
	case "delete-contact":
		return cli.DeleteContactCommand(ctx, a.store, args)

	// Deal commands
	case "add-deal":
		return cli.AddDealCommand(ctx, a.board, args)
	case "list-deals":
		return cli.ListDealsCommand(ctx, a.board, args)
	case "update-deal":
		return cli.UpdateDealCommand(ctx, a.board, args)
	case "move-deal":
		return cli.MoveDealCommand(ctx, a.board, args)
	case "delete-deal":
		return cli.DeleteDealCommand(ctx, a.board, args)

	// Task commands
	case "add-task":
		return cli.AddTaskCommand(ctx, a.store, args)
	case "list-tasks":
		return cli.ListTasksCommand(ctx, a.store, args)
	case "toggle-task":
		return cli.ToggleTaskCommand(ctx, a.store, args)

	// Activity commands
	case "log-activity":
		return cli.LogActivityCommand(ctx, a.store, args)
	case "list-activities":
		return cli.ListActivitiesCommand(ctx, a.store, args)

	// Quote commands
	case "add-quote":
		return cli.AddQuoteCommand(ctx, a.store, args)
	case "list-quotes":
		return cli.ListQuotesCommand(ctx, a.store, args)

	default:
		printUsage()
		return fmt.Errorf("unknown crm command: %s", command)
	}
}

func (a *app) runViz(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("viz requires a subcommand")
	}

	switch args[0] {
	case "dashboard":
		return cli.VizDashboardCommand(ctx, a.store, args[1:])
	case "graph":
		if len(args) < 2 {
			return fmt.Errorf("viz graph requires a type (contacts or pipeline)")
		}
		switch args[1] {
		case "contacts":
			return cli.VizGraphContactsCommand(ctx, a.store, args[2:])
		case "pipeline":
			return cli.VizGraphPipelineCommand(ctx, a.store, args[2:])
		default:
			return fmt.Errorf("unknown graph type: %s", args[1])
		}
	default:
		printUsage()
		return fmt.Errorf("unknown viz command: %s", args[0])
	}
}

// runKV drives the charm key-value sync commands.
func runKV(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("kv requires a subcommand: link, status, sync, or wipe")
	}

	client, err := charm.Open(&cfg.Charm)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	switch args[0] {
	case "link":
		return charm.SyncLinkCommand(client, args[1:])
	case "status":
		return charm.SyncStatusCommand(client, args[1:])
	case "sync":
		return charm.SyncNowCommand(client, args[1:])
	case "wipe":
		return charm.SyncWipeCommand(client, args[1:])
	default:
		return fmt.Errorf("unknown kv command: %s", args[0])
	}
}

func printUsage() {
	fmt.Printf(`dealboard v%s - CRM with a drag-and-drop pipeline board

USAGE:
  dealboard [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <file>        Config file (default: ~/.config/dealboard/config.yaml)
  --db-path <path>       SQLite database path (default: ~/.local/share/dealboard/dealboard.db)
  --store <backend>      Record store: sql, memory, or kv
  --port <n>             HTTP port for serve (default: 8080)
  --log-level <level>    debug, info, warn, or error
  --init                 Initialize the store and exit

COMMANDS:
  serve                  Serve the web board and JSON API
  board                  Open the terminal board (prints columns when not a terminal)
  mcp                    Start MCP server on stdio
  crm                    CRM management commands
  viz                    Visualization commands
  export                 Write a pipeline snapshot to a directory or S3
  sync                   Import Google Contacts
  kv                     Charm cloud sync for the kv store

CRM COMMANDS:
  dealboard crm add-contact      --first-name --last-name --email --phone [--company --position]
  dealboard crm list-contacts    [--query <text>] [--limit <n>]
  dealboard crm update-contact   [flags] <id>
  dealboard crm delete-contact   <id>

  dealboard crm add-deal         --title <title> [--value --stage --probability --contact --close-date]
  dealboard crm list-deals       [--stage <stage>] [--search <text>] [--limit <n>]
  dealboard crm update-deal      [flags] <id>
  dealboard crm move-deal        <id> <stage>
  dealboard crm delete-deal      <id>

  dealboard crm add-task         --title <title> --due YYYY-MM-DD [--priority --contact --deal]
  dealboard crm list-tasks       [--all] [--deal <id>] [--status <s>] [--search <text>]
  dealboard crm toggle-task      <id>

  dealboard crm log-activity     --subject <s> --description <d> [--type --contact --deal]
  dealboard crm list-activities  [--contact <id>] [--deal <id>] [--type <t>] [--search <text>]

  dealboard crm add-quote        --deal <id> --contact <id> --company <name> [flags]
  dealboard crm list-quotes      [--deal <id>] [--status <status>] [--search <text>]

  Stages: lead, qualified, proposal, negotiation, closed-won, closed-lost
  Note: flags must come before positional IDs

VIZ COMMANDS:
  dealboard viz dashboard                 Terminal dashboard
  dealboard viz graph pipeline [--output <file>]
  dealboard viz graph contacts [--output <file>] [id]

EXPORT COMMANDS:
  dealboard export                        Write a snapshot
  dealboard export list                   List stored snapshots

SYNC COMMANDS:
  dealboard sync init                     Authorize Google access
  dealboard sync contacts                 Import Google Contacts

KV COMMANDS:
  dealboard kv link | status | sync | wipe

EXAMPLES:
  # Serve the board on :8080 backed by a throwaway seeded store
  DEALBOARD_STORE_SEED=true dealboard --store memory serve

  # Move a deal the way a drag on the board does
  dealboard crm move-deal 3 negotiation

`, version)
}
