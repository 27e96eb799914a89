package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"buildwatch/internal/monitor"
	"buildwatch/internal/progress"
	"buildwatch/internal/source"
	"buildwatch/internal/trace"
	"buildwatch/internal/ui"
)

// stringSlice implements flag.Value for repeatable string flags.
type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ", ") }
func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// config holds the parsed CLI configuration for a monitoring session.
type config struct {
	tmuxTarget   string
	targets      stringSlice
	maxTime      int
	singleCheck  bool
	outputFormat string
	tui          bool
	statusFile   string
	command      []string
}

func parseFlags() config {
	var cfg config

	flag.StringVar(&cfg.tmuxTarget, "tmux", "", "watch an existing tmux pane instead of running a command")
	flag.Var(&cfg.targets, "target", "tracked package target (repeatable; default: http, rest, openapi)")
	flag.IntVar(&cfg.maxTime, "max-time", 3600, "give up after this many seconds")
	flag.BoolVar(&cfg.singleCheck, "single-check", false, "perform one check and exit")
	flag.StringVar(&cfg.outputFormat, "output-format", "text", "final report format: text or json")
	flag.BoolVar(&cfg.tui, "tui", false, "show a live watch screen instead of line output")
	flag.StringVar(&cfg.statusFile, "status-file", "", "write a JSON status snapshot here each cycle")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: buildwatch [flags] [command ...]\n\n")
		fmt.Fprintf(os.Stderr, "Buildwatch runs a build command (or watches a tmux pane) and infers\n")
		fmt.Fprintf(os.Stderr, "build phase, progress, and per-target completion from its output.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	cfg.command = flag.Args()

	if cfg.tmuxTarget == "" && len(cfg.command) == 0 {
		fmt.Fprintln(os.Stderr, "error: give a build command or --tmux <pane>")
		flag.Usage()
		os.Exit(1)
	}
	if cfg.tmuxTarget != "" && len(cfg.command) > 0 {
		fmt.Fprintln(os.Stderr, "error: --tmux and a build command are mutually exclusive")
		os.Exit(1)
	}
	if cfg.outputFormat != "text" && cfg.outputFormat != "json" {
		fmt.Fprintf(os.Stderr, "error: unknown output format %q\n", cfg.outputFormat)
		os.Exit(1)
	}

	return cfg
}

func run(ctx context.Context, cfg config) (int, error) {
	var src monitor.Source
	if cfg.tmuxTarget != "" {
		src = source.NewTmuxSource(cfg.tmuxTarget)
	} else {
		cs, err := source.StartCommand(ctx, "", cfg.command)
		if err != nil {
			return 1, err
		}
		defer cs.Close()
		src = cs
	}

	targets := []string(cfg.targets)
	if len(targets) == 0 {
		targets = monitor.DefaultTargets
	}

	exporter, err := trace.NewExporter(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildwatch: tracing disabled: %v\n", err)
	}
	defer exporter.Shutdown(context.Background())

	observers := []monitor.Observer{trace.NewObserver(ctx, exporter, targets)}
	if cfg.statusFile != "" {
		observers = append(observers, monitor.NewStatusWriter(cfg.statusFile))
	}

	// In JSON mode stdout carries only the final report; progress goes to
	// stderr so the output stays machine-readable.
	var progressOut io.Writer = os.Stdout
	if cfg.outputFormat == "json" {
		progressOut = os.Stderr
	}

	mcfg := monitor.Config{
		Source:      src,
		Targets:     targets,
		MaxDuration: time.Duration(cfg.maxTime) * time.Second,
		SingleCheck: cfg.singleCheck,
	}

	var result *monitor.Result
	if cfg.tui {
		events := make(chan progress.Event, 64)
		observers = append(observers, progress.NewEventObserver(events))
		mcfg.Observer = monitor.NewMultiObserver(observers...)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		done := make(chan *monitor.Result, 1)
		go func() {
			res, err := monitor.Run(runCtx, mcfg)
			if err != nil {
				res = &monitor.Result{}
			}
			done <- res
			close(events)
		}()

		p := tea.NewProgram(ui.NewModel(events))
		if _, err := p.Run(); err != nil {
			cancel()
			<-done
			return 1, err
		}
		cancel() // quitting the screen ends the session
		result = <-done
	} else {
		observers = append(observers, monitor.NewLogObserver(progressOut))
		mcfg.Observer = monitor.NewMultiObserver(observers...)
		mcfg.Output = progressOut

		result, err = monitor.Run(ctx, mcfg)
		if err != nil {
			return 1, err
		}
	}

	if cfg.outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Status.Report()); err != nil {
			return 1, err
		}
	}

	return result.ExitCode(), nil
}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildwatch: %v\n", err)
	}
	os.Exit(code)
}
