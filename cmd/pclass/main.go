package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mgomes/pseudoclass/internal/logdemo"
	"github.com/mgomes/pseudoclass/jsclass"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "demo":
		return demoCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	level := fs.String("log-level", "warn", "engine log level (debug, info, warn, error)")
	checkOnly := fs.Bool("check", false, "only compile the script without executing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("pclass run: script path required")
	}
	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	logger, err := newLogger(*level)
	if err != nil {
		return err
	}

	engine, err := jsclass.NewEngine(jsclass.Config{Logger: logger, Stdout: os.Stdout})
	if err != nil {
		return err
	}
	if *checkOnly {
		if err := engine.Compile(scriptPath, string(input)); err != nil {
			return fmt.Errorf("compile failed: %w", err)
		}
		return nil
	}
	if _, err := engine.Run(scriptPath, string(input)); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	logger.WithField("classes", len(engine.Classes())).Debug("script finished")
	return nil
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	level := fs.String("log-level", "warn", "engine log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger, err := newLogger(*level)
	if err != nil {
		return err
	}
	return runREPL(logger)
}

func demoCommand(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	interval := fs.Duration("interval", 200*time.Millisecond, "delay between counted log lines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return logdemo.Run(ctx, logdemo.Options{Out: os.Stdout, Err: os.Stderr}, *interval)
}

// newLogger builds the engine logger. Output goes to stderr so it never
// mixes with script output.
func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	return logger, nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [flags] <script.js>")
	fmt.Fprintln(os.Stderr, "    run a script with the Class global installed")
	fmt.Fprintln(os.Stderr, "  repl [flags]")
	fmt.Fprintln(os.Stderr, "    start an interactive session")
	fmt.Fprintln(os.Stderr, "  demo [flags]")
	fmt.Fprintln(os.Stderr, "    run the colour logger example")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -log-level string")
	fmt.Fprintln(os.Stderr, "    engine log level for run and repl (default \"warn\")")
	fmt.Fprintln(os.Stderr, "  -check")
	fmt.Fprintln(os.Stderr, "    only compile the script without executing (run)")
	fmt.Fprintln(os.Stderr, "  -interval duration")
	fmt.Fprintln(os.Stderr, "    delay between counted log lines (demo, default 200ms)")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
