// Package main is the kiku CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/cli"
	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/index"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/observe"
	"github.com/hyperjump/kiku/internal/pipeline"
	"github.com/hyperjump/kiku/internal/server"
	"github.com/hyperjump/kiku/internal/session"
	"github.com/hyperjump/kiku/internal/videoid"
	"github.com/hyperjump/kiku/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kiku/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if it exists, and a missing default file falls
// back to built-in defaults. Returns the config and the path actually loaded
// ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, err := config.Load(fallback)
				if err != nil {
					return nil, "", err
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	var err error
	switch command {
	case "server":
		err = runServer(args)
	case "build":
		err = runBuild(args)
	case "ask":
		err = runAsk(args)
	case "search":
		err = runSearch(args)
	case "status":
		err = runStatus(args)
	case "clear":
		err = runClear(args)
	case "version", "--version", "-v":
		fmt.Printf("kiku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	config *string
	debug  *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", defaultConfigPath, "config file path"),
		debug:  fs.Bool("debug", false, "enable debug logging"),
	}
}

// setup loads config and builds a logger. One-shot commands stay quiet unless
// debug is on; the server always logs.
func (c commonFlags) setup(alwaysLog bool) (*config.Config, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(*c.config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *c.debug
	cfg.Debug = debugMode
	if !debugMode && !alwaysLog {
		return cfg, zap.NewNop(), nil
	}
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	return cfg, logger, nil
}

// reorderArgs moves flags (and their values) in front of positional arguments,
// keeping both groups in their original order. The flag package stops at the
// first positional, so "kiku ask <id> question --k 3" would otherwise leave --k unparsed.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

// joinArgs joins positional args with spaces so multi-word questions work
// with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	common := addCommonFlags(fs)
	_ = fs.Parse(args)

	cfg, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shutdownMetrics, err := observe.InitProvider(context.Background(), observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer shutdownMetrics(context.Background())

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		return err
	}
	defer components.Close()

	metrics := components.Metrics
	sessions := session.NewManager(components.Pipeline,
		session.WithLogger(logger),
		session.WithActiveHook(func(delta int64) {
			metrics.ActiveSessions.Add(context.Background(), delta)
		}))
	defer sessions.Close()

	srv := server.NewServer(sessions, cfg, metrics, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// buildFlags are shared by commands that may need to build an index first.
type buildFlags struct {
	lang        *string
	noTranslate *bool
	rebuild     *bool
}

func addBuildFlags(fs *flag.FlagSet) buildFlags {
	return buildFlags{
		lang:        fs.String("lang", "", "preferred transcript language (default from config)"),
		noTranslate: fs.Bool("no-translate", false, "index non-English transcripts as-is"),
		rebuild:     fs.Bool("rebuild", false, "rebuild the index even if one exists"),
	}
}

func (b buildFlags) request(ref string) pipeline.BuildRequest {
	req := pipeline.BuildRequest{Reference: ref, PreferredLanguage: *b.lang, Rebuild: *b.rebuild}
	if *b.noTranslate {
		off := false
		req.Translate = &off
	}
	return req
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	common := addCommonFlags(fs)
	build := addBuildFlags(fs)
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(fs, args))
	if fs.NArg() != 1 {
		return errors.New("usage: kiku build [flags] <video url or id>")
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		return err
	}

	cfg, logger, err := common.setup(false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		return err
	}
	defer components.Close()

	res, ix, err := components.Pipeline.Build(context.Background(), build.request(fs.Arg(0)))
	if err != nil {
		return err
	}
	defer ix.Close()
	return cli.WriteBuild(os.Stdout, res, format)
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	common := addCommonFlags(fs)
	build := addBuildFlags(fs)
	k := fs.Int("k", 0, fmt.Sprintf("number of transcript chunks to use (%d-%d, default from config)", models.MinTopK, models.MaxTopK))
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(fs, args))
	if fs.NArg() < 2 {
		return errors.New("usage: kiku ask [flags] <video url or id> <question>")
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		return err
	}
	q := models.Question{Text: joinArgs(fs.Args()[1:]), K: *k}
	if err := q.Validate(); err != nil {
		return err
	}
	if _, err := videoid.Extract(fs.Arg(0)); err != nil {
		return err
	}

	cfg, logger, err := common.setup(false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if *k == 0 {
		q.K = cfg.Retrieval.K
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx := context.Background()
	res, ix, err := components.Pipeline.Build(ctx, build.request(fs.Arg(0)))
	if err != nil {
		return err
	}
	defer ix.Close()
	if format == cli.OutputText && !res.Reused {
		_ = cli.WriteBuild(os.Stderr, res, format)
	}

	ans, err := components.Pipeline.Ask(ctx, ix, q)
	if err != nil {
		return err
	}
	return cli.WriteAnswer(os.Stdout, ans, format)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", 5, "maximum number of passages")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(fs, args))
	if fs.NArg() < 2 {
		return errors.New("usage: kiku search [flags] <video url or id> <terms>")
	}
	format, err := cli.ParseFormat(*output)
	if err != nil {
		return err
	}
	id, err := videoid.Extract(fs.Arg(0))
	if err != nil {
		return err
	}

	cfg, logger, err := common.setup(false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		return err
	}
	defer components.Close()

	path := components.Pipeline.IndexPath(id)
	if !index.Exists(path) {
		return fmt.Errorf("%s: %w (run: kiku build %s)", id, index.ErrNotFound, id)
	}
	ix, err := index.Open(path, components.Embedder.Dimensions())
	if err != nil {
		return err
	}
	defer ix.Close()

	res, err := components.Pipeline.Search(context.Background(), ix, joinArgs(fs.Args()[1:]), *limit)
	if err != nil {
		return err
	}
	return cli.WriteLookup(os.Stdout, res, format)
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	common := addCommonFlags(fs)
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)
	format, err := cli.ParseFormat(*output)
	if err != nil {
		return err
	}
	cfg, _, err := common.setup(false)
	if err != nil {
		return err
	}
	summaries, err := index.List(cfg.Storage.IndexRoot)
	if err != nil {
		return err
	}
	return cli.WriteStatus(os.Stdout, cfg.Storage.IndexRoot, summaries, format)
}

func runClear(args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	common := addCommonFlags(fs)
	all := fs.Bool("all", false, "remove every index under the index root")
	_ = fs.Parse(reorderArgs(fs, args))
	if !*all && fs.NArg() != 1 {
		return errors.New("usage: kiku clear [flags] <video url or id> | kiku clear --all")
	}
	cfg, _, err := common.setup(false)
	if err != nil {
		return err
	}

	var ids []string
	if *all {
		summaries, err := index.List(cfg.Storage.IndexRoot)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			ids = append(ids, s.VideoID)
		}
	} else {
		id, err := videoid.Extract(fs.Arg(0))
		if err != nil {
			return err
		}
		path := videoid.IndexPath(cfg.Storage.IndexRoot, id)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", id, index.ErrNotFound)
		}
		ids = []string{id}
	}
	for _, id := range ids {
		if err := index.Remove(videoid.IndexPath(cfg.Storage.IndexRoot, id)); err != nil {
			return err
		}
		fmt.Printf("Removed index for %s\n", id)
	}
	return nil
}

func printUsage() {
	fmt.Println(`kiku - Ask questions about a video's transcript

Usage:
  kiku server [flags]                      Start the HTTP server
  kiku build [flags] <video>               Fetch and index a video transcript
  kiku ask [flags] <video> <question>      Answer a question from the transcript, with timestamps
  kiku search [flags] <video> <terms>      Find transcript passages containing terms
  kiku status [flags]                      List indexed videos
  kiku clear [flags] <video> | --all       Delete indexes
  kiku version                             Show version
  kiku help                                Show this help

<video> is a YouTube URL (youtube.com/watch?v=..., youtu.be/...) or an 11-character video id.

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kiku/config.yaml, or ./config.yaml if present)
  --debug            Enable debug logging

Build / Ask Flags:
  --lang string      Preferred transcript language (default from config, "en")
  --no-translate     Index non-English transcripts without translating them
  --rebuild          Rebuild the index even if one exists
  --output string    Output format: text or json (default: text)

Ask Flags:
  --k int            Number of transcript chunks used as context (2-10, default 5)

Search Flags:
  --limit int        Maximum number of passages (default: 5)

Examples:
  kiku build https://youtu.be/dQw4w9WgXcQ
  kiku ask dQw4w9WgXcQ "What is the main argument?"
  kiku ask --k 8 --output json dQw4w9WgXcQ summarize this video
  kiku search dQw4w9WgXcQ gradient descent
  kiku status`)
}
