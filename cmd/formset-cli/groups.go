package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formset/internal/ui"
)

func (a *app) groupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "groups",
		Aliases: []string{"ls"},
		Short:   "List the configured subform groups",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := ui.NewTable("NAME", "PREFIX", "KIND", "MAX", "CONTAINER", "TRIGGER")
			for _, name := range a.cfg.GroupNames() {
				group := a.cfg.Groups[name]
				table.AddRow(name, group.Prefix, string(group.Kind), strconv.Itoa(group.MaxRows), group.ContainerID, group.TriggerID)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return err
		},
	}
}
