// Package main is the oshiete CLI entry point.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/paperlab/oshiete/internal/cli"
	"github.com/paperlab/oshiete/internal/config"
	"github.com/paperlab/oshiete/internal/extract"
	"github.com/paperlab/oshiete/internal/finder"
	"github.com/paperlab/oshiete/internal/llm"
	"github.com/paperlab/oshiete/internal/server"
	"github.com/paperlab/oshiete/internal/storage"
	"github.com/paperlab/oshiete/internal/tutor"
	"github.com/paperlab/oshiete/internal/watcher"
	"github.com/paperlab/oshiete/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/oshiete/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "oshiete server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
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
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "version", "--version", "-v":
		fmt.Printf("oshiete version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// backendFactory builds the per-session client constructor. The credential is
// resolved once at startup; a bad one surfaces on session creation.
func backendFactory(cfg *config.Config, apiKey string) tutor.ClientFactory {
	return func() (llm.Client, error) {
		return llm.NewOpenAIClient(llm.Options{
			Endpoint:    cfg.Model.Endpoint,
			APIKey:      apiKey,
			Model:       cfg.Model.ID,
			Temperature: cfg.Model.TemperatureOrDefault(),
			MaxTokens:   cfg.Model.MaxTokens,
		})
	}
}

// openArchive opens the transcript archive when one is configured.
// A missing database_path disables archiving.
func openArchive(cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.DatabasePath == "" {
		return nil, nil
	}
	return storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (session transitions, uploads, etc.)")
	_ = fs.Parse(os.Args[2:])

	_ = godotenv.Load()

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	apiKey, err := cfg.APIKey()
	if err != nil {
		logger.Fatal("Backend credential missing", zap.Error(err))
	}

	archive, err := openArchive(cfg)
	if err != nil {
		logger.Fatal("Failed to open archive", zap.Error(err))
	}
	if archive != nil {
		defer archive.Close()
	}

	srv := server.NewServer(cfg, backendFactory(cfg, apiKey), archive, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// chatApp holds the single terminal session. The mutex serializes REPL input
// against drop-folder uploads.
type chatApp struct {
	mu     sync.Mutex
	ctl    *tutor.Controller
	finder *finder.Finder
	format cli.OutputFormat
}

func (a *chatApp) load(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", path, err)
		return
	}
	fmt.Printf("Extracting %s...\n", filepath.Base(path))
	result, err := a.ctl.Upload(context.Background(), content, filepath.Base(path))
	if err != nil {
		fmt.Printf("Upload failed: %v\n", err)
		if a.ctl.State() == tutor.StateInitFailed {
			fmt.Println("The paper text is kept; try /reinit to reconnect.")
		}
		return
	}
	fmt.Printf("Loaded %s (%s characters)\n", result.Filename, utils.FormatCount(result.Chars))
	if result.Warning != "" {
		fmt.Println(result.Warning)
	}
}

func (a *chatApp) send(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctl.State() == tutor.StateReady {
		fmt.Println("Thinking...")
	}
	reply, _, err := a.ctl.Send(context.Background(), text)
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	cli.WriteMessage(os.Stdout, reply)
}

func (a *chatApp) find(query string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.finder.Ready() {
		fmt.Println("No paper loaded; use /load <path> first.")
		return
	}
	resp, err := a.finder.Find(context.Background(), query)
	if err != nil {
		fmt.Printf("Find failed: %v\n", err)
		return
	}
	if err := cli.WriteFindResults(os.Stdout, resp, a.format); err != nil {
		fmt.Printf("Output failed: %v\n", err)
	}
}

func (a *chatApp) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ctl.Clear(context.Background()); err != nil {
		fmt.Printf("Clear failed: %v\n", err)
		if a.ctl.State() == tutor.StateInitFailed {
			fmt.Println("The paper text is kept; try /reinit to reconnect.")
		}
		return
	}
	fmt.Println("Chat cleared. The paper is still loaded.")
}

func (a *chatApp) reinit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ctl.Reinit(context.Background()); err != nil {
		fmt.Printf("Reinit failed: %v\n", err)
		return
	}
	fmt.Println("Session reinitialized.")
}

func (a *chatApp) session() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := cli.WriteSession(os.Stdout, a.ctl.Snapshot(), a.format); err != nil {
		fmt.Printf("Output failed: %v\n", err)
	}
}

// parseCommand splits a slash command line into the command and its argument.
func parseCommand(line string) (cmd, arg string) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
	cmd = fields[0]
	if len(fields) == 2 {
		arg = strings.TrimSpace(fields[1])
	}
	return cmd, arg
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	watchDir := fs.String("watch-dir", "", "drop folder: papers appearing here are loaded automatically (overrides config)")
	outputFormat := fs.String("output", "text", "output format for /find and /session: text or json")
	_ = fs.Parse(os.Args[2:])

	_ = godotenv.Load()

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	apiKey, err := cfg.APIKey()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	archive, err := openArchive(cfg)
	if err != nil {
		fmt.Printf("Failed to open archive: %v\n", err)
		os.Exit(1)
	}
	if archive != nil {
		defer archive.Close()
	}

	fdr := finder.NewFinder(cfg.Finder.ChunkSize, cfg.Finder.ChunkOverlap, cfg.Finder.MaxMatches)
	opts := []tutor.ControllerOption{
		tutor.WithLogger(logger),
		tutor.WithPaperIndex(fdr),
	}
	if archive != nil {
		opts = append(opts, tutor.WithArchive(archive))
	}
	app := &chatApp{
		ctl: tutor.NewController(uuid.New().String(), extract.NewExtractor(), backendFactory(cfg, apiKey),
			cfg.Limits.MaxChars, cfg.Limits.WarningChars, opts...),
		finder: fdr,
		format: format,
	}

	dropDir := *watchDir
	if dropDir == "" {
		dropDir = cfg.Chat.WatchDir
	}
	if dropDir != "" {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.NewWatcher(dropDir, extract.SupportedExtensions(), func(path string) {
			fmt.Printf("\nPicked up %s from the drop folder.\n", filepath.Base(path))
			app.load(path)
			fmt.Print("> ")
		}, watchOpts...)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := w.Start(watchCtx); err != nil {
			fmt.Printf("Failed to watch %s: %v\n", dropDir, err)
			os.Exit(1)
		}
		defer w.Stop()
		fmt.Printf("Watching %s for dropped papers.\n", dropDir)
	}

	cli.WriteWelcome(os.Stdout)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			app.send(line)
			continue
		}
		cmd, arg := parseCommand(line)
		switch cmd {
		case "/load":
			if arg == "" {
				fmt.Println("Usage: /load <path>")
				continue
			}
			app.load(arg)
		case "/find":
			if arg == "" {
				fmt.Println("Usage: /find <query>")
				continue
			}
			app.find(arg)
		case "/clear":
			app.clear()
		case "/reinit":
			app.reinit()
		case "/session":
			app.session()
		case "/quit", "/exit":
			return
		default:
			fmt.Printf("Unknown command %s; try /load, /find, /clear, /reinit, /session, /quit\n", cmd)
		}
	}
}

func printUsage() {
	fmt.Println(`oshiete - chat with a research paper

Usage:
  oshiete server [flags]   Start the HTTP API server
  oshiete chat [flags]     Interactive terminal session
  oshiete version          Show version
  oshiete help             Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/oshiete/config.yaml)
  --debug            Enable debug logging (session transitions, uploads, etc.)

Chat Flags:
  --config string     Config file path
  --debug             Enable debug logging
  --watch-dir string  Drop folder: papers appearing here are loaded automatically
  --output string     Output format for /find and /session: text or json (default: text)

The backend credential is read from the environment variable named by
model.api_key_env (default OPENAI_API_KEY). A .env file in the current
directory is loaded if present.

Examples:
  oshiete server
  oshiete chat
  oshiete chat --watch-dir ~/papers/inbox
  oshiete chat --output json`)
}
