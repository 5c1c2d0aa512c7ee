package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/engine/lines"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/sidecar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errBadNote = errors.New("note must be INDEX:LENGTH:TEXT")

type noteSpec struct {
	index, length int
	text          string
}

func parseNote(s string) (noteSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return noteSpec{}, errBadNote
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil || index < 0 {
		return noteSpec{}, errBadNote
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil || length < 0 {
		return noteSpec{}, errBadNote
	}
	return noteSpec{index: index, length: length, text: parts[2]}, nil
}

func newNotesCmd(a *app) *cobra.Command {
	var add []string

	cmd := &cobra.Command{
		Use:   "notes FILE",
		Short: "List or add pinned notes",
		Long:  `notes lists the pinned notes stored next to FILE in its .anchors sidecar. Each --add INDEX:LENGTH:TEXT pins a note over LENGTH characters from the global character INDEX and saves the sidecar.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := make([]noteSpec, 0, len(add))
			for _, s := range add {
				n, err := parseNote(s)
				if err != nil {
					return fmt.Errorf("%q: %w", s, err)
				}
				specs = append(specs, n)
			}

			styles, err := a.cfg.Styles(nil)
			if err != nil {
				return err
			}
			doc, err := a.openDocument(cmd.Context(), args[0], styles)
			if err != nil {
				return err
			}

			if len(specs) > 0 {
				noteStyle, _ := styles.Get(style.KeyNote)
				for _, n := range specs {
					ok, err := doc.AddAnnotation(lines.NewAnnotation(noteStyle, n.length, n.text), n.index)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("note %d:%d does not fit in its line", n.index, n.length)
					}
				}
				saved, err := sidecar.Save(args[0], doc)
				if err != nil {
					return err
				}
				a.logger.Debug("sidecar saved", zap.String("path", sidecar.Path(args[0])), zap.Int("records", saved))
			}

			out := cmd.OutOrStdout()
			for _, ann := range doc.Annotations(engine.ByKind(style.Pinned)) {
				idx, ok := doc.AnnotationIndex(ann)
				if !ok {
					continue
				}
				fmt.Fprintf(out, "%s\t%d\t%s\t%v\n", position(doc, idx), ann.Len(), ann.Key(), ann.Payload())
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&add, "add", nil, "pin a note INDEX:LENGTH:TEXT (repeatable)")
	return cmd
}
