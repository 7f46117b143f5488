// Package main provides the CLI entrypoint for typetest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typetest/internal/config"
	"github.com/verte-zerg/typetest/internal/generator"
	"github.com/verte-zerg/typetest/internal/historyui"
	"github.com/verte-zerg/typetest/internal/httpapi"
	"github.com/verte-zerg/typetest/internal/logging"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/passage"
	"github.com/verte-zerg/typetest/internal/session"
	"github.com/verte-zerg/typetest/internal/stats"
	"github.com/verte-zerg/typetest/internal/store"
	"github.com/verte-zerg/typetest/internal/tui"
	"github.com/verte-zerg/typetest/internal/wordlist"
)

const (
	defaultLang          = "en"
	defaultWords         = 30
	defaultCaps          = 0.0
	defaultPunct         = 0.0
	defaultHistoryWindow = 5
	defaultServeAddr     = "127.0.0.1:8080"
)

const defaultPunctSet = ".,!?;:\"'()-"

var (
	testDuration int
	testSource   string
	testPassages string
	testWordlist string
	testLang     string
	testWords    int
	testCaps     float64
	testPunct    float64
	testPunctSet string

	debugEnabled bool
	debugLogFile string

	historySince  string
	historyLast   int
	historyWindow int
	historyPlain  bool

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typetest",
		Short:         "Timed typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "write debug logs")
	rootCmd.PersistentFlags().StringVar(&debugLogFile, "log-file", "", "debug log file (implies --debug)")

	rootCmd.Flags().IntVar(&testDuration, "duration", model.DefaultDuration, "test length in seconds (30, 60, 120 or 300)")
	rootCmd.Flags().StringVar(&testSource, "source", model.SourceCorpus, "passage source: corpus or words")
	rootCmd.Flags().StringVar(&testPassages, "passages", "", "passage file, one passage per line (default: built-in corpus)")
	rootCmd.Flags().StringVar(&testWordlist, "wordlist", "", "word list file for --source words")
	rootCmd.Flags().StringVar(&testLang, "lang", defaultLang, "word list language (default: en)")
	rootCmd.Flags().IntVar(&testWords, "words", defaultWords, "words per generated passage")
	rootCmd.Flags().Float64Var(&testCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&testPunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&testPunctSet, "punct-set", defaultPunctSet, "punctuation set")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newPassagesCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func initLogging() func() {
	path, err := logging.Initialize(debugEnabled, debugLogFile, config.DefaultLogDir())
	if err != nil {
		logErrf("failed to initialize logging: %v\n", err)
		return func() {}
	}
	if path != "" {
		logErrf("Writing debug log to %s\n", path)
	}
	return logging.Close
}

func loadTestConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &testDuration, fileCfg.Test.Duration)
	applyStringConfig(cmd, "source", &testSource, fileCfg.Test.Source)
	applyStringConfig(cmd, "passages", &testPassages, fileCfg.Test.Passages)
	applyStringConfig(cmd, "wordlist", &testWordlist, fileCfg.Test.Wordlist)
	applyStringConfig(cmd, "lang", &testLang, fileCfg.Test.Lang)
	applyIntConfig(cmd, "words", &testWords, fileCfg.Test.Words)
	applyFloatConfig(cmd, "caps", &testCaps, fileCfg.Test.CapsPct)
	applyFloatConfig(cmd, "punct", &testPunct, fileCfg.Test.PunctPct)
	applyStringConfig(cmd, "punct-set", &testPunctSet, fileCfg.Test.PunctSet)

	cfg := model.Config{
		Duration:     testDuration,
		Source:       strings.ToLower(strings.TrimSpace(testSource)),
		PassagesPath: testPassages,
		WordListPath: testWordlist,
		Lang:         testLang,
		Words:        testWords,
		CapsPct:      testCaps,
		PunctPct:     testPunct,
		PunctSet:     testPunctSet,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	defer initLogging()()

	cfg, err := loadTestConfig(cmd)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := tui.NewModel(st, provider, session.NewTickerClock(time.Second), cfg.Duration)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func buildProvider(cfg model.Config) (passage.Provider, error) {
	switch cfg.Source {
	case model.SourceWords:
		path := cfg.WordListPath
		if path == "" {
			path = config.DefaultWordListPath(cfg.Lang)
		}
		words, err := wordlist.LoadWords(path, wordlist.FilterForLang(cfg.Lang))
		if err != nil {
			return nil, wordListLoadError(path, err)
		}
		gen := generator.New(generator.Options{
			Words:    cfg.Words,
			CapsPct:  cfg.CapsPct,
			PunctPct: cfg.PunctPct,
			PunctSet: []rune(cfg.PunctSet),
		})
		return passage.NewWords(words, gen)
	default:
		if cfg.PassagesPath == "" {
			return passage.DefaultCorpus(nil), nil
		}
		return passage.LoadCorpus(cfg.PassagesPath, nil)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the commented config file unless one already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show attempt history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	defer initLogging()()

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "window", &historyWindow, fileCfg.History.Window)
	applyIntConfig(cmd, "last", &historyLast, fileCfg.History.Last)

	cfg, err := historyConfig(historySince, historyLast, historyWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyPlain {
		return writePlainHistory(cmd, st, cfg)
	}
	program := tea.NewProgram(historyui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func historyConfig(since string, last, window int) (model.HistoryConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.HistoryConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.HistoryConfig{Since: sinceTime, Last: last, Window: window}, nil
}

func writePlainHistory(cmd *cobra.Command, lister stats.AttemptLister, cfg model.HistoryConfig) error {
	report, err := stats.BuildReport(cmd.Context(), lister, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Attempts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Attempts) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurves(out, report.Attempts, cfg.Window); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderAttemptTable(out, report.Attempts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPassagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passages",
		Short: "List the passages of the active corpus",
		Args:  cobra.NoArgs,
		RunE:  runPassagesCmd,
	}
	cmd.Flags().StringVar(&testPassages, "passages", "", "passage file (default: built-in corpus)")
	return cmd
}

func runPassagesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "passages", &testPassages, fileCfg.Test.Passages)

	corpus := passage.DefaultCorpus(nil)
	if testPassages != "" {
		corpus, err = passage.LoadCorpus(testPassages, nil)
		if err != nil {
			return err
		}
	}
	for _, p := range corpus.Passages() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve attempt history as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	defer initLogging()()

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logErrf("Serving attempt history on http://%s\n", serveAddr)
	if err := httpapi.Serve(ctx, serveAddr, httpapi.New(st).Router()); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typetest configuration
# Uncomment a value to enable it. CLI flags override config values.

[test]
# duration = %d           # Test length in seconds: 30, 60, 120 or 300
# source = %q       # Passage source: "corpus" or "words"
# passages = ""           # Passage file, one passage per line (default: built-in corpus)
# wordlist = ""           # Word list file for source = "words"
# lang = %q             # Word list language
# words = %d              # Words per generated passage
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set

[history]
# window = %d              # Moving average window for trend curves
# last = 0                # Limit to last N attempts (0 = all)

[serve]
# addr = %q
`,
		model.DefaultDuration,
		model.SourceCorpus,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultHistoryWindow,
		defaultServeAddr,
	)
}

func validateConfig(cfg model.Config) error {
	if !model.ValidDuration(cfg.Duration) {
		return fmt.Errorf("--duration must be one of %v", model.Durations)
	}
	switch cfg.Source {
	case model.SourceCorpus:
	case model.SourceWords:
		if cfg.Words <= 0 {
			return fmt.Errorf("--words must be > 0")
		}
		if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
			return fmt.Errorf("--caps must be between 0 and 1")
		}
		if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
			return fmt.Errorf("--punct must be between 0 and 1")
		}
		if cfg.PunctPct > 0 && cfg.PunctSet == "" {
			return fmt.Errorf("--punct-set must not be empty")
		}
	default:
		return fmt.Errorf("--source must be %q or %q", model.SourceCorpus, model.SourceWords)
	}
	return nil
}

func wordListLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		"Use --wordlist to point at a file with one word per line, or --source corpus.",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
