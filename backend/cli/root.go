package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/klppl/digg-invite-brutforce/backend/candidate"
	"github.com/klppl/digg-invite-brutforce/backend/config"
	"github.com/klppl/digg-invite-brutforce/backend/fetcher"
	"github.com/klppl/digg-invite-brutforce/backend/logger"
	redeemscan "github.com/klppl/digg-invite-brutforce/backend/scanner/redeem"
	"github.com/klppl/digg-invite-brutforce/backend/state"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

type runFlags struct {
	configFile      string
	baseURL         string
	workers         int
	tokensPerWorker int
	headless        bool
	interactive     bool
	delay           time.Duration
	maxRate         float64
	resultsDir      string
	rulesFile       string
	browserPath     string
	logLevel        string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&runFlags{})
}

func newRootCommand(flags *runFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "invitefinder",
		Short:         "Try random invite codes against a redeem page and record the accepted ones",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	f := root.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "INI or YAML config file")
	f.StringVarP(&flags.baseURL, "url", "u", "", "redeem URL, the token is appended or replaces {token}")
	f.IntVarP(&flags.workers, "workers", "w", 4, "number of browser windows")
	f.IntVarP(&flags.tokensPerWorker, "tokens", "n", 10000, "codes to test per worker")
	f.BoolVar(&flags.headless, "headless", true, "run browsers headless")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "prompt for workers, headless mode and codes per worker")
	f.DurationVar(&flags.delay, "delay", 500*time.Millisecond, "pause after every attempt")
	f.Float64Var(&flags.maxRate, "max-rate", 0, "attempts per second across all workers, 0 disables")
	f.StringVar(&flags.resultsDir, "results-dir", "results", "directory for result logs")
	f.StringVar(&flags.rulesFile, "rules", "", "JSON verdict rules merged into the defaults")
	f.StringVar(&flags.browserPath, "browser", "", "Chrome executable")
	f.StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error")

	root.AddCommand(newInitConfigCommand())
	return root
}

func newInitConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.ini"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return errors.Errorf("%s already exists", path)
			}
			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			cmd.Printf("default config written to %s\n", path)
			return nil
		},
	}
}

// resolveConfig layers the config file, explicitly set flags and, when asked
// for, the interactive answers.
func resolveConfig(cmd *cobra.Command, flags *runFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.Target.BaseURL = flags.baseURL
	}
	if changed("workers") {
		cfg.Run.Workers = flags.workers
	}
	if changed("tokens") {
		cfg.Run.TokensPerWorker = flags.tokensPerWorker
	}
	if changed("headless") {
		cfg.Browser.Headless = flags.headless
	}
	if changed("delay") {
		cfg.Run.Delay = flags.delay
	}
	if changed("max-rate") {
		cfg.Run.MaxRate = flags.maxRate
	}
	if changed("results-dir") {
		cfg.Run.ResultsDir = flags.resultsDir
	}
	if changed("rules") {
		cfg.Target.RulesFile = flags.rulesFile
	}
	if changed("browser") {
		cfg.Browser.Path = flags.browserPath
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}

	if flags.interactive {
		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		cfg.Run.Workers = p.positiveInt("How many Chrome windows do you want to run?", cfg.Run.Workers)
		cfg.Browser.Headless = p.yesNo("Run browsers in headless mode?", cfg.Browser.Headless)
		cfg.Run.TokensPerWorker = p.positiveInt("How many codes to test per worker?", cfg.Run.TokensPerWorker)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildClassifier(cfg *config.Config) (*verdict.Classifier, error) {
	rules := verdict.DefaultRuleSet(cfg.Target.InvalidMarker, cfg.Target.AcceptSignals)
	if cfg.Target.RulesFile != "" {
		extra, err := verdict.LoadRuleSet(cfg.Target.RulesFile)
		if err != nil {
			return nil, err
		}
		rules.Merge(extra)
	}
	return verdict.NewClassifier(rules), nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		log.WithError(err).Warn("file logging disabled")
	}
	entry := log.WithField("component", "redeemscan")

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return err
	}
	gen, err := candidate.NewGenerator(candidate.Options{
		Length:   cfg.Run.TokenLength,
		Alphabet: cfg.Run.Alphabet,
		Seed:     cfg.Run.Seed,
	})
	if err != nil {
		return err
	}
	sink, err := state.NewFileSink(cfg.Run.ResultsDir, time.Now())
	if err != nil {
		return err
	}
	defer sink.Close()

	chrome := fetcher.NewChrome(fetcher.ChromeOptions{
		BrowserPath:     cfg.Browser.Path,
		Headless:        cfg.Browser.Headless,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		SettleDelay:     cfg.Browser.SettleDelay,
		ViewportWidth:   cfg.Browser.ViewportWidth,
		ViewportHeight:  cfg.Browser.ViewportHeight,
		Verbose:         cfg.Browser.Verbose,
		Logger:          log.WithField("component", "fetcher"),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			// A second interrupt falls through to the default handler.
			stop()
			entry.Warn("interrupt received, finishing in-flight attempts")
		case <-finished:
		}
	}()

	entry.WithFields(logrus.Fields{
		"workers":  cfg.Run.Workers,
		"headless": cfg.Browser.Headless,
		"log":      sink.Path(),
	}).Info("starting invite code search")

	engine := redeemscan.NewEngine(chrome, classifier, gen, sink, entry)
	summary, err := engine.Run(ctx, redeemscan.Params{
		BaseURL:         cfg.Target.BaseURL,
		Workers:         cfg.Run.Workers,
		TokensPerWorker: cfg.Run.TokensPerWorker,
		Delay:           cfg.Run.Delay,
		MaxRate:         cfg.Run.MaxRate,
		ProgressEvery:   cfg.Run.ProgressEvery,
		StartupAttempts: cfg.Browser.StartupAttempts,
	})
	if err != nil {
		return err
	}
	writeSummary(cmd.OutOrStdout(), summary)
	return nil
}

// Execute runs the root command with ctx and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		return 1
	}
	return 0
}
