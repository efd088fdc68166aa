package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/internal/ui"
	"github.com/goliatone/go-formset/pkg/upload"
)

func (a *app) checkCommand() *cobra.Command {
	var (
		avatar bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Check an image selection and build its previews",
		Long: `Apply the upload rules to the given files as if they were picked in one
file input, then build the preview thumbnails in selection order.

Examples:
  formset check cover.png detail.jpg
  formset check --avatar me.jpg
  formset check --json *.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]upload.File, 0, len(args))
			for _, path := range args {
				file, err := upload.FromPath(path)
				if err != nil {
					return err
				}
				files = append(files, file)
			}

			rules := a.cfg.Rules()
			if avatar {
				rules = upload.AvatarRules()
			}
			if err := rules.Check(files); err != nil {
				var violation *upload.Violation
				if errors.As(err, &violation) {
					fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatNotice(violation.Notice(a.translator, a.cfg.Locale)))
				}
				return err
			}

			previews, err := a.cfg.PreviewGenerator().Generate(cmd.Context(), files)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(previews)
			}

			table := ui.NewTable("#", "FILE", "TYPE", "SIZE", "PREVIEW")
			for _, p := range previews {
				size := "-"
				if p.Width > 0 && p.Height > 0 {
					size = fmt.Sprintf("%dx%d", p.Width, p.Height)
					if p.Scaled {
						size += " (scaled)"
					}
				}
				table.AddRow(strconv.Itoa(p.Position), p.Filename, p.ContentType, upload.FormatSize(files[p.Position].Size), size)
			}
			_, err = fmt.Fprint(out, table.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&avatar, "avatar", false, "Apply the single profile photo rules")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print previews as JSON")
	return cmd
}
