package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/selimozcann/URLTester/internal/banner"
	"github.com/selimozcann/URLTester/internal/config"
	"github.com/selimozcann/URLTester/internal/httpclient"
	"github.com/selimozcann/URLTester/internal/logging"
	"github.com/selimozcann/URLTester/internal/metrics"
	"github.com/selimozcann/URLTester/internal/output"
	"github.com/selimozcann/URLTester/internal/probe"
	"github.com/selimozcann/URLTester/internal/progress"
	"github.com/selimozcann/URLTester/internal/runner"
	"github.com/selimozcann/URLTester/internal/statuscolor"
)

// Version is printed in the title line.
const Version = "1.3.1"

const missingArguments = "Missing Arguments -- Please try again."

// Exit codes.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitFailed = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit " + strconv.Itoa(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type flags struct {
	file        string
	output      string
	configFile  string
	headers     []string
	verbose     bool
	noBanner    bool
	noOverwrite bool
	strict      bool
	jsonl       string
	html        string
	metrics     string
}

// newRootCmd builds the command. Each call returns an independent command so
// flag state never leaks between runs.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	v := config.New()

	cmd := &cobra.Command{
		Use:   "urltester",
		Short: "Verify that URLs redirect where they are expected to",
		Long: `urltester reads a list of URLs with their expected redirect targets
from a CSV, JSON or YAML file, requests each one and reports whether the
final resolved URL matches.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.file == "" {
				fmt.Fprintln(stdout, missingArguments)
				_ = cmd.Usage()
				return &exitError{code: ExitError}
			}
			return run(cmd.Context(), v, f, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "input file (.csv, .json, .yaml)")
	fs.StringVarP(&f.output, "output", "o", "", "write the report to this file")
	fs.StringVar(&f.configFile, "config", "", "config file")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, `extra request header "Name: value" (repeatable)`)
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.BoolVar(&f.noBanner, "no-banner", false, "do not print the banner")
	fs.BoolVar(&f.noOverwrite, "no-overwrite", false, "pick a new report file name instead of replacing an existing file")
	fs.BoolVar(&f.strict, "strict", false, "exit with status 2 when any URL fails")
	fs.StringVar(&f.jsonl, "jsonl", "", "also write results as JSON lines to this file")
	fs.StringVar(&f.html, "html", "", "also write an HTML report to this file")
	fs.StringVar(&f.metrics, "metrics", "", "write Prometheus metrics in textfile format to this file")

	fs.StringP("domain", "d", "", "base domain prepended to every URL")
	fs.BoolP("threaded", "t", false, "probe URLs in parallel")
	fs.Int("workers", 0, "parallel workers (0 means GOMAXPROCS)")
	fs.Duration("timeout", 0, "per-request timeout (default 100s)")
	fs.Int("max-redirects", 0, "redirects followed per URL (default 50)")
	fs.String("user-agent", "", "User-Agent header")
	fs.Bool("insecure", false, "skip TLS certificate verification")
	fs.String("log-level", "", "log level (debug, info, warn, error)")

	for key, name := range map[string]string{
		"domain":        "domain",
		"threaded":      "threaded",
		"workers":       "workers",
		"timeout":       "timeout",
		"max_redirects": "max-redirects",
		"user_agent":    "user-agent",
		"insecure":      "insecure",
		"log_level":     "log-level",
	} {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}
	return cmd
}

func run(ctx context.Context, v *viper.Viper, f flags, stdout, stderr io.Writer) error {
	cfg, err := config.Load(v, f.configFile)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	logger, err := logging.New(cfg.LogLevel, f.verbose)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	defer func() { _ = logger.Sync() }()

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}

	if f.noBanner {
		fmt.Fprintln(stdout, banner.Title(Version))
	} else {
		banner.Print(stdout, Version)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		Headers:      headers,
		UserAgent:    cfg.UserAgent,
		Insecure:     cfg.Insecure,
		MaxRedirects: cfg.MaxRedirects,
	})
	defer client.CloseIdleConnections()

	m := metrics.New()
	strategy := runner.Select(cfg.Threaded, cfg.Workers)
	session := runner.NewSession(f.file, cfg.Domain, strategy,
		probe.New(client, cfg.Domain, logger),
		runner.WithLogger(logger), runner.WithMetrics(m))
	logger.Debug("session created",
		zap.String("run_id", session.ID),
		zap.String("strategy", strategy.Name()),
		zap.Duration("timeout", cfg.Timeout))

	fmt.Fprintln(stdout, "Loading File...")
	if !session.Load() {
		printLines(stdout, output.FormatErrors(session.Errors()))
		return &exitError{code: ExitError}
	}

	fmt.Fprintln(stdout, "Running...")
	passed, err := session.Run(ctx, runner.WithReporter(newReporter(stderr, cfg)))
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}

	errs := session.Errors()
	if len(errs) > 0 {
		fmt.Fprintln(stdout, "Errors...")
		printLines(stdout, output.FormatErrors(errs))
	}

	fmt.Fprintln(stdout, "Results...")
	lines, err := session.Results()
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	sink := output.Sink{Console: stdout, Decorate: statuscolor.Line, NoOverwrite: f.noOverwrite}
	written, err := sink.Write(lines, f.output)
	if err != nil {
		return &exitError{code: ExitError, err: err}
	}
	if written != "" {
		logger.Info("report written", zap.String("path", written))
	}

	if err := writeExports(f, cfg, session, m); err != nil {
		return &exitError{code: ExitError, err: err}
	}

	if f.strict && !passed {
		return &exitError{code: ExitFailed}
	}
	return nil
}

// newReporter draws a bar only when stderr is a terminal.
func newReporter(stderr io.Writer, cfg *config.Config) progress.Reporter {
	if file, ok := stderr.(*os.File); ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())) {
		return progress.NewBar(stderr, cfg.ProgressInterval)
	}
	return progress.NewNop()
}

func writeExports(f flags, cfg *config.Config, session *runner.Session, m *metrics.Metrics) error {
	records := session.Records()
	if f.jsonl != "" {
		if err := writeFile(f.jsonl, func(w io.Writer) error {
			return output.WriteJSONL(w, records)
		}); err != nil {
			return fmt.Errorf("write jsonl: %w", err)
		}
	}
	if f.html != "" {
		page := output.BuildPage("URLTester Report", records, session.Errors(), map[string]string{
			"file":     f.file,
			"domain":   cfg.Domain,
			"threaded": strconv.FormatBool(cfg.Threaded),
			"workers":  strconv.Itoa(cfg.Workers),
			"timeout":  cfg.Timeout.String(),
			"run id":   session.ID,
		})
		if err := writeFile(f.html, func(w io.Writer) error {
			return output.RenderHTML(w, page)
		}); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
	}
	if f.metrics != "" {
		if err := m.WriteTextfile(f.metrics); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func writeFile(path string, render func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func parseHeaders(raw []string) (http.Header, error) {
	h := http.Header{}
	for _, line := range raw {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", line)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// Execute runs the command against the process arguments and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
