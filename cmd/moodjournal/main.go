package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pbaille/moodjournal/internal/api"
	"github.com/pbaille/moodjournal/internal/classifier"
	"github.com/pbaille/moodjournal/internal/config"
	"github.com/pbaille/moodjournal/internal/corpus"
	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
	"github.com/pbaille/moodjournal/internal/logger"
	"github.com/pbaille/moodjournal/internal/session"
	"github.com/pbaille/moodjournal/internal/store"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "moodjournal",
		Short:         "Journal entries with automatic emotion detection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".moodjournal", "corpus.db")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.String("db", defaultDB, "corpus cache database path")
	pf.String("log-file", "", "also write JSON logs to this rotated file")
	pf.Bool("debug", false, "verbose logging")
	pf.String("corpus-file", "", "train from a local JSON Lines corpus instead of the hub")
	pf.Bool("refresh", false, "ignore the cached corpus and fetch it again")
	pf.String("suggestions", "", "suggestion bank YAML (defaults to the built-in bank)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(writeCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(corpusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, domain.ErrDataUnavailable) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

// app bundles what every command needs
type app struct {
	cfg   *config.Config
	log   *logger.ZapLogger
	store *store.Store
	model *classifier.Shared
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	log := logger.NewZapLogger(logger.Options{
		FilePath:   cfg.LogFile,
		Production: cfg.Production,
		Debug:      cfg.Debug,
	})

	a := &app{cfg: cfg, log: log}

	var src classifier.CorpusLoader
	if cfg.Corpus.File != "" {
		src = corpus.FileSource{Path: cfg.Corpus.File}
	} else {
		st, err := getStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.store = st

		hub := corpus.NewHubSource()
		hub.BaseURL = cfg.Corpus.HubURL
		hub.Dataset = cfg.Corpus.Dataset
		hub.Config = cfg.Corpus.Config
		hub.Split = cfg.Corpus.Split

		src = &corpus.CachedSource{
			Upstream: hub,
			Store:    st,
			Name:     cfg.Corpus.Dataset,
			Split:    cfg.Corpus.Split,
			Log:      log,
			Refresh:  cfg.Corpus.Refresh,
		}
	}

	a.model = classifier.NewShared(src, classifier.Options{
		Seed:        cfg.Training.Seed,
		TestSize:    cfg.Training.TestSize,
		MaxFeatures: cfg.Training.MaxFeatures,
		MaxIter:     cfg.Training.MaxIter,
		C:           cfg.Training.C,
	}, log)

	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.log.Sync()
}

func getStore(dbPath string) (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

func loadBank(path string) (*journal.SuggestionBank, error) {
	b, err := config.LoadBank(path)
	if err != nil {
		return nil, err
	}
	return journal.NewSuggestionBank(b.Table())
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the journal HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			bank, err := loadBank(a.cfg.Suggestions)
			if err != nil {
				return err
			}

			// train before accepting any session
			model, err := a.model.Model()
			if err != nil {
				return err
			}

			sessions := session.NewRepository(model, journal.SystemClock, a.cfg.SessionTTL)
			server := api.New(sessions, bank, model, a.log, a.cfg.Addr)
			return server.Run()
		},
	}

	cmd.Flags().StringP("addr", "a", ":8080", "server address")
	cmd.Flags().Duration("session-ttl", time.Hour, "idle time before a session is forgotten")
	return cmd
}

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write",
		Short: "Start an interactive journaling session",
		Long: `Each line you type is analyzed and recorded in this session's journal.
Commands: :history, :stats, :timeline, :help, :quit
Prefix a line with a backslash to journal it verbatim, e.g. \\:quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			bank, err := loadBank(a.cfg.Suggestions)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Preparing the emotion model...")
			model, err := a.model.Model()
			if err != nil {
				return err
			}

			sess := session.NewRepository(model, journal.SystemClock, a.cfg.SessionTTL).Create()
			return writeLoop(cmd.InOrStdin(), cmd.OutOrStdout(), sess, bank)
		},
	}
}

func classifyCmd() *cobra.Command {
	var showProbs bool

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Print the emotion detected in a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return domain.ErrEmptyInput
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			model, err := a.model.Model()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, model.Classify(text))
			if showProbs {
				probs := model.Probabilities(text)
				for _, e := range domain.Emotions {
					fmt.Fprintf(out, "  %-9s %.3f\n", e, probs[e])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showProbs, "probabilities", "p", false, "also print per-label probabilities")
	return cmd
}

func corpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the training corpus",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "fetch",
		Short: "Download the corpus into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if a.store == nil {
				return fmt.Errorf("corpus-file is set; nothing to fetch")
			}

			hub := corpus.NewHubSource()
			hub.BaseURL = a.cfg.Corpus.HubURL
			hub.Dataset = a.cfg.Corpus.Dataset
			hub.Config = a.cfg.Corpus.Config
			hub.Split = a.cfg.Corpus.Split

			c, err := hub.Load(cmd.Context())
			if err != nil {
				return err
			}
			info, err := a.store.SaveCorpus(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d samples from %s/%s\n", info.Samples, info.Name, info.Split)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached corpora",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if a.store == nil {
				return fmt.Errorf("corpus-file is set; no cache in use")
			}

			infos, err := a.store.ListCorpora()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cached corpora yet. Use 'moodjournal corpus fetch'.")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-10s %6d samples  %s\n",
					info.ID[:8], info.Name, info.Split, info.Samples, info.FetchedAt.Format(domain.TimestampLayout))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "evaluate",
		Short: "Train and report accuracy on the held-out split",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			model, err := a.model.Model()
			if err != nil {
				return err
			}

			heldOut := model.HeldOut()
			fmt.Fprintf(cmd.OutOrStdout(), "vocabulary=%d iterations=%d held_out=%d accuracy=%.4f\n",
				model.Vocabulary(), model.Iterations(), len(heldOut), model.Evaluate(heldOut))
			return nil
		},
	})

	return cmd
}
