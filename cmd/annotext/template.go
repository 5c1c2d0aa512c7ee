package main

import (
	"fmt"
	"strings"

	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/template"
	"github.com/spf13/cobra"
)

func newTemplateCmd(a *app) *cobra.Command {
	var (
		manifest string
		file     string
		vars     []string
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "template [NAME]",
		Short: "Expand a text template to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				m   *template.Manifest
				err error
			)
			if manifest != "" {
				m, err = template.LoadManifest(manifest)
			} else {
				m, err = a.cfg.LoadTemplates()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				for _, name := range m.Names() {
					t, _ := m.Get(name)
					if t.Hotkey != "" {
						fmt.Fprintf(out, "%s\t%s\n", name, t.Hotkey)
					} else {
						fmt.Fprintln(out, name)
					}
				}
				return nil
			}

			t, ok := m.Get(args[0])
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}

			env := m.Env(file)
			env.Variables = make(map[string]string, len(m.Variables)+len(vars))
			for k, v := range m.Variables {
				env.Variables[k] = v
			}
			for _, kv := range vars {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("variable %q must be NAME=VALUE", kv)
				}
				env.Variables[k] = v
			}

			styles, err := a.cfg.Styles(nil)
			if err != nil {
				return err
			}
			doc := engine.New(a.cfg.EngineOptions(styles, a.logger)...)
			if _, err := t.Apply(cmd.Context(), doc, 0, template.NewTypes(), env); err != nil {
				return err
			}
			_, err = doc.WriteTo(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "YAML template manifest (default: from config)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file path used by the File token")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "template variable NAME=VALUE (repeatable)")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list template names and hotkeys")
	return cmd
}
