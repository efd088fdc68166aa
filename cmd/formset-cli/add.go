package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/internal/ui"
	"github.com/goliatone/go-formset/pkg/formset"
)

func (a *app) addCommand() *cobra.Command {
	var (
		group   string
		counter int
		clicks  int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Simulate clicks on a group's add button",
		Long: `Start from a counter value and press the add button the given number of
times. Prints the file input of every appended row and the final counter.
Clicks past the group maximum print the limit notice and stop.

Examples:
  formset add --group post-create --counter 3
  formset add --group comment --counter 4 --clicks 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.build(group, counter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for range clicks {
				row, err := g.AddRow()
				var limit *formset.LimitError
				if errors.As(err, &limit) {
					fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatNotice(limit.Notice(a.translator, a.cfg.Locale)))
					break
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, row.File.Name())
			}
			_, err = fmt.Fprintf(out, "%s=%s\n", formset.TotalFormsName(g.Config().Prefix), strconv.Itoa(g.Total()))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&group, "group", "g", "post-create", "Configured group name")
	flags.IntVar(&counter, "counter", 0, "Counter value before the first click")
	flags.IntVarP(&clicks, "clicks", "n", 1, "Number of clicks")
	return cmd
}
