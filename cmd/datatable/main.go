package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bjaus/datatable"
	"github.com/bjaus/datatable/internal/browse"
	"github.com/bjaus/datatable/internal/config"
	"github.com/bjaus/datatable/internal/logging"
	"github.com/bjaus/datatable/internal/source"
	"github.com/bjaus/datatable/internal/web"
)

const version = "0.1.0"

const usage = `datatable: sort and render tabular records

Usage:
  datatable render [flags] [source]    write the table once
  datatable serve  [flags] [source]    serve an interactive HTML table
  datatable browse [flags] [source]    browse the table in the terminal
  datatable version

The source is a .csv, .tsv, .json or .yaml file, - for stdin, or a
postgres:// connection string used with -query. It defaults to
DATATABLE_SOURCE, then stdin.

Examples:
  datatable render -sort -price -format markdown products.csv
  cat people.json | datatable render -input json -index
  datatable serve -schema columns.yaml -port 9000 people.csv
  datatable browse -query 'select * from orders' postgres://localhost/shop

Run 'datatable <command> -h' for the flags of a command. Every flag
defaults to its DATATABLE_* environment variable; a .env file in the
working directory is loaded first.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "datatable %s\n", version)
		return 0
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	case "render", "serve", "browse":
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err := config.LoadFiles(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	out := ""
	fs := newFlagSet(cmd, cfg, &out, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: at most one source may be given")
		return 2
	}
	if fs.NArg() == 1 {
		cfg.Source.Path = fs.Arg(0)
	}
	if cfg.Source.Path == "" {
		cfg.Source.Path = "-"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)
	slog.Debug("configuration loaded", "config", cfg.String())

	data, err := loadData(cfg, stdin)
	if err != nil {
		slog.Error("failed to load records", "error", err)
		return 1
	}

	switch cmd {
	case "render":
		err = runRender(cfg, data, out, stdout)
	case "serve":
		err = runServe(cfg, data)
	case "browse":
		err = runBrowse(cfg, data)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		return 1
	}
	return 0
}

// newFlagSet binds the command's flags to cfg so flags override the
// environment.
func newFlagSet(cmd string, cfg *config.Config, out *string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.Source.Format, "input", cfg.Source.Format, "Record format when the source has no extension: csv, tsv, json, yaml")
	fs.StringVar(&cfg.Source.Query, "query", cfg.Source.Query, "SQL query for a postgres source")
	fs.StringVar(&cfg.Source.Schema, "schema", cfg.Source.Schema, "Column schema file (YAML or JSON)")
	fs.DurationVar(&cfg.Source.Timeout, "timeout", cfg.Source.Timeout, "Time limit for loading the source")

	fs.StringVar(&cfg.Table.Sort, "sort", cfg.Table.Sort, "Fixed sort, e.g. name or -price")
	fs.StringVar(&cfg.Table.GroupBy, "group", cfg.Table.GroupBy, "Column to group rows by")
	fs.BoolVar(&cfg.Table.Indexed, "index", cfg.Table.Indexed, "Add a row number column")
	fs.BoolVar(&cfg.Table.NoHeader, "no-header", cfg.Table.NoHeader, "Omit the header row")
	fs.StringVar(&cfg.Table.Placeholder, "placeholder", cfg.Table.Placeholder, "Text shown when there are no rows")
	fs.StringVar(&cfg.Table.Title, "title", cfg.Table.Title, "Table title")

	switch cmd {
	case "render":
		fs.StringVar(&cfg.Table.Format, "format", cfg.Table.Format, "Output format: table, plain, markdown, html, csv, tsv, json, jsonl, yaml, list, env, go-template=<tmpl>")
		fs.StringVar(&cfg.Table.Border, "border", cfg.Table.Border, "Border style: rounded, ascii, heavy, double, none")
		fs.StringVar(out, "out", "", "Write output to file instead of stdout")
	case "serve":
		fs.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Interface to listen on")
		fs.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "Port to listen on")
		fs.StringVar(&cfg.Table.Border, "border", cfg.Table.Border, "Border style of text exports")
	case "browse":
		fs.StringVar(&cfg.Table.Border, "border", cfg.Table.Border, "Border style: rounded, ascii, heavy, double, none")
	}
	return fs
}

func loadData(cfg *config.Config, stdin io.Reader) (web.Dataset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.Timeout)
	defer cancel()

	rows, err := source.Load(ctx, source.Spec{
		Path:   cfg.Source.Path,
		Format: cfg.Source.Format,
		Query:  cfg.Source.Query,
		Stdin:  stdin,
	})
	if err != nil {
		return web.Dataset{}, err
	}
	data := web.Dataset{Rows: rows}
	if cfg.Source.Schema != "" {
		if data.Schema, err = source.LoadSchema(cfg.Source.Schema); err != nil {
			return web.Dataset{}, err
		}
	}
	slog.Debug("records loaded", "rows", len(rows), "columns", len(data.Schema))
	return data, nil
}

func props(cfg *config.Config, data web.Dataset) datatable.Props[source.Row] {
	p := datatable.Props[source.Row]{
		Data:     data.Rows,
		Columns:  data.Schema,
		GroupBy:  cfg.Table.GroupBy,
		Indexed:  cfg.Table.Indexed,
		NoHeader: cfg.Table.NoHeader,
	}
	if cfg.Table.Sort != "" {
		p.SortBy = datatable.SortKey(cfg.Table.Sort)
	}
	if cfg.Table.Placeholder != "" {
		p.Placeholder = datatable.Text(cfg.Table.Placeholder)
	}
	return p
}

func runRender(cfg *config.Config, data web.Dataset, out string, stdout io.Writer) error {
	f, err := datatable.ParseFormat(cfg.Table.Format)
	if err != nil {
		return err
	}
	border, err := datatable.ParseBorder(cfg.Table.Border)
	if err != nil {
		return err
	}

	root := datatable.New(datatable.WithLogger[source.Row](slog.Default())).Render(props(cfg, data))
	write := func(w io.Writer) error {
		return datatable.Write(w, f, root,
			datatable.WithBorder(border),
			datatable.WithTitle(cfg.Table.Title),
		)
	}
	if out == "" {
		return write(stdout)
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func runServe(cfg *config.Config, data web.Dataset) error {
	server := web.NewServer(data, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func runBrowse(cfg *config.Config, data web.Dataset) error {
	border, err := datatable.ParseBorder(cfg.Table.Border)
	if err != nil {
		return err
	}
	m := browse.New(data.Rows, browse.Options{
		Schema:      data.Schema,
		GroupBy:     cfg.Table.GroupBy,
		Indexed:     cfg.Table.Indexed,
		NoHeader:    cfg.Table.NoHeader,
		Placeholder: cfg.Table.Placeholder,
		SortBy:      cfg.Table.Sort,
		Border:      border,
		Title:       cfg.Table.Title,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
