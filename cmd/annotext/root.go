package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/annotext/internal/config"
	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/logging"
	"github.com/dshills/annotext/internal/sidecar"
	"github.com/dshills/annotext/internal/spell"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes the environment variables overriding global flags,
// e.g. ANNOTEXT_LOG_LEVEL.
const EnvPrefix = "ANNOTEXT"

// app is the state shared by the subcommands.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "annotext",
		Short:         "Inspect and annotate text files",
		Long:          `annotext loads text files into an annotated document, reports spelling and other annotations, keeps pinned notes in .anchors sidecar files and expands text templates.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default: $XDG_CONFIG_HOME/annotext/config.toml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	for _, name := range []string{"config", "log-level", "log-format"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newStatsCmd(a),
		newSpellCmd(a),
		newNotesCmd(a),
		newTemplateCmd(a),
	)
	return root
}

// init loads the configuration, applies flag and environment overrides and
// builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	path := a.v.GetString("config")
	if path == "" {
		path = defaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl := a.v.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := a.v.GetString("log-format"); f != "" {
		cfg.Log.Format = f
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging(a.errOut))
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	logger.Debug("configuration loaded", zap.String("path", path))
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "annotext", "config.toml")
}

// openDocument loads a file with the configured styles and its sidecar
// notes.
func (a *app) openDocument(ctx context.Context, path string, styles *style.Registry) (*engine.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := engine.NewFromReader(f, a.cfg.EngineOptions(styles, a.logger)...)
	if err != nil {
		return nil, err
	}

	n, skipped, err := sidecar.Load(ctx, path, doc, styles)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		fmt.Fprintf(a.errOut, "%s: %v\n", sidecar.Path(path), s)
	}
	a.logger.Debug("document opened",
		zap.String("path", path),
		zap.Int("lines", doc.LineCount()),
		zap.Int("anchors", n))
	return doc, nil
}

// styles builds the configured registry, with a spell checker when
// spelling is enabled.
func (a *app) styles() (*style.Registry, error) {
	styles, _, _, err := a.spellStyles()
	return styles, err
}

// spellStyles builds the style registry along with the spell checker and
// the user dictionary it reads, both nil when spelling is disabled.
func (a *app) spellStyles() (*style.Registry, *spell.Checker, *spell.Dictionary, error) {
	if !a.cfg.Spell.Enabled {
		styles, err := a.cfg.Styles(nil)
		return styles, nil, nil, err
	}
	checker, user, err := a.cfg.SpellChecker()
	if err != nil {
		return nil, nil, nil, err
	}
	styles, err := a.cfg.Styles(checker)
	if err != nil {
		return nil, nil, nil, err
	}
	return styles, checker, user, nil
}

// position formats a global index as 1-based line:column.
func position(doc *engine.Document, index int) string {
	line := doc.GetLineFromCharIndex(index, 0)
	col := index - doc.GetFirstCharIndexFromLine(line)
	return fmt.Sprintf("%d:%d", line+1, col+1)
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Print line, character and annotation counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			styles, err := a.styles()
			if err != nil {
				return err
			}
			doc, err := a.openDocument(cmd.Context(), args[0], styles)
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, ann := range doc.Annotations(nil) {
				counts[ann.Key()]++
			}
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lines: %d\n", doc.LineCount())
			fmt.Fprintf(out, "characters: %d\n", doc.TextLength())
			fmt.Fprintf(out, "annotations: %d\n", len(doc.Annotations(nil)))
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %d\n", k, counts[k])
			}
			return nil
		},
	}
}
