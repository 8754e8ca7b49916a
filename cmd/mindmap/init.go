package main

import (
	"github.com/spf13/cobra"

	initcmd "github.com/npratt/mindmap/internal/init"
)

func (a *app) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write .mindmap/config.yaml with every setting and its default, plus a
.gitignore for the files the viewer keeps next to it.

Existing files that differ are left alone and their diff is shown unless
--force is given. With --global the user config in ~/.config/mindmap is
written instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := initcmd.Run(initcmd.Options{
				DryRun:  a.v.GetBool(FlagDryRun),
				Force:   a.v.GetBool(FlagForce),
				Minimal: a.v.GetBool(FlagMinimal),
				Global:  a.v.GetBool(FlagGlobal),
				Writer:  cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().Bool(FlagDryRun, false, "Show what would be written without writing")
	cmd.Flags().Bool(FlagForce, false, "Overwrite files that differ from the template")
	cmd.Flags().Bool(FlagMinimal, false, "Only write the backend and source settings")
	cmd.Flags().Bool(FlagGlobal, false, "Write the user config instead of the project config")
	return cmd
}
