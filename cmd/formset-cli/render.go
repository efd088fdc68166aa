package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/internal/ui"
	"github.com/goliatone/go-formset/pkg/render"
)

func (a *app) renderCommand() *cobra.Command {
	var (
		group    string
		rows     int
		action   string
		method   string
		csrf     string
		renderer string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a subform group as HTML",
		Long: `Render a group scaffold with its management inputs, existing rows and
add trigger.

Examples:
  formset render --group post-create
  formset render --group post-update --rows 3 --action /posts/7/edit --method PUT
  formset render --group comment --output comment.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.build(group, rows)
			if err != nil {
				return err
			}
			registry, err := a.registry()
			if err != nil {
				return err
			}
			r, err := registry.Resolve(renderer)
			if err != nil {
				return err
			}

			opts := a.renderOptions()
			opts.Action = action
			opts.Method = method
			if csrf != "" {
				opts.Hidden = render.MergeHiddenFields(nil, render.CSRFToken("csrf_token", csrf))
			}
			data, err := r.Render(cmd.Context(), g, opts)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatSuccess("Group written to "+output))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&group, "group", "g", "post-create", "Configured group name")
	flags.IntVar(&rows, "rows", 0, "Number of existing server rows")
	flags.StringVar(&action, "action", "", "Wrap the group in a form posting to this URL")
	flags.StringVar(&method, "method", "", "Form method; PUT, PATCH and DELETE add a _method field")
	flags.StringVar(&csrf, "csrf", "", "CSRF token added as a hidden field")
	flags.StringVar(&renderer, "renderer", "", "Renderer name (default vanilla)")
	flags.StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
