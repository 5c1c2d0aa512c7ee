package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/spell"
	"github.com/spf13/cobra"
)

var errNoUserDictionary = errors.New("--watch needs a user dictionary (spell.user_dictionary or --user-dict)")

func newSpellCmd(a *app) *cobra.Command {
	var (
		dicts    []string
		userDict string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "spell FILE",
		Short: "List misspelled words",
		Long: `spell lists the words of FILE missing from every configured dictionary and from the word lists given with --dict, one per line as LINE:COLUMN WORD.

With --watch the list is printed again each time the user dictionary changes, until interrupted. Every listing is followed by a "--" line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Spell.Enabled = true
			for _, d := range dicts {
				abs, err := filepath.Abs(d)
				if err != nil {
					return err
				}
				a.cfg.Spell.Dictionaries = append(a.cfg.Spell.Dictionaries, abs)
			}
			if userDict != "" {
				abs, err := filepath.Abs(userDict)
				if err != nil {
					return err
				}
				a.cfg.Spell.UserDictionary = abs
			}
			if watch && a.cfg.Spell.UserDictionary == "" {
				return errNoUserDictionary
			}

			styles, checker, user, err := a.spellStyles()
			if err != nil {
				return err
			}
			doc, err := a.openDocument(cmd.Context(), args[0], styles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !watch {
				listMisspelled(out, doc)
				return nil
			}

			w, err := spell.NewWatcher(a.cfg.Path(a.cfg.Spell.UserDictionary), user, checker,
				spell.WithWatcherLogger(a.logger),
				spell.WithReloadHook(func() {
					doc.RefreshAnnotations()
					listMisspelled(out, doc)
					fmt.Fprintln(out, "--")
				}))
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				_ = w.Stop()
				return err
			}
			defer func() { _ = w.Stop() }()

			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&dicts, "dict", "d", nil, "word list file (repeatable)")
	cmd.Flags().StringVarP(&userDict, "user-dict", "u", "", "user dictionary file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check when the user dictionary changes")
	return cmd
}

func listMisspelled(out io.Writer, doc *engine.Document) {
	for _, ann := range doc.Annotations(engine.ByKey(style.KeySpellcheck)) {
		idx, ok := doc.AnnotationIndex(ann)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%s %v\n", position(doc, idx), ann.Payload())
	}
}
