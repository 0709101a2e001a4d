package main

import (
	"io"

	defaults "github.com/Paranoid-AF/zsh-codex/default"
	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Print the zsh widget, load it with eval \"$(zsh-codex init)\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), defaults.ZshPlugin)
			return err
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print an example zsh_codex.ini",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), defaults.ExampleConfig)
			return err
		},
	})
	return cmd
}
