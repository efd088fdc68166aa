package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/pkg/renderers/tui"
)

func (a *app) interactiveCommand() *cobra.Command {
	var (
		group  string
		rows   int
		format string
	)

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Fill a subform group from the terminal",
		Long: `Walk through a group in the terminal: mark existing rows for deletion,
add rows and pick image files for them. Prints what a browser would submit.

Examples:
  formset interactive --group post-update --rows 2
  formset interactive --group comment --format form`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat := tui.OutputFormat(format)
			switch outputFormat {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown format %q (json, form, pretty)", format)
			}

			g, err := a.build(group, rows)
			if err != nil {
				return err
			}
			r, err := tui.New(
				tui.WithPromptDriver(a.driver),
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithOutputFormat(outputFormat),
			)
			if err != nil {
				return err
			}
			data, err := r.Render(cmd.Context(), g, a.renderOptions())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&group, "group", "g", "post-create", "Configured group name")
	flags.IntVar(&rows, "rows", 0, "Number of existing server rows")
	flags.StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "Output format (json, form, pretty)")
	return cmd
}
