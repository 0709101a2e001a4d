package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Paranoid-AF/zsh-codex/cache"
	"github.com/Paranoid-AF/zsh-codex/generate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	labelColor = color.New(color.Bold)
	okColor    = color.New(color.FgGreen, color.Bold)
	errColor   = color.New(color.FgRed, color.Bold)
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and build the client without sending a request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.check(cmd)
		},
	}
}

func (a *app) check(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	path := a.env.ResolveConfigPath(a.configPath)
	row(out, "config", path)

	fail := func(err error) error {
		row(out, "status", errColor.Sprint("error"))
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return fail(err)
	}
	row(out, "service", cfg.Service)
	row(out, "api_type", cfg.APIType())
	row(out, "keys", strings.Join(cfg.Keys(), ", "))

	client, err := a.newClient(cmd.Context(), cfg)
	if err != nil {
		row(out, "supported", strings.Join(generate.SupportedAPITypes(), ", "))
		return fail(err)
	}
	row(out, "model", client.Model())

	timeout, err := cfg.Duration("timeout", generate.DefaultTimeout)
	if err != nil {
		return fail(err)
	}
	row(out, "timeout", timeout.String())

	ttl, err := cfg.Duration("cache_ttl", 0)
	if err != nil {
		return fail(err)
	}
	if ttl == 0 {
		row(out, "cache", "disabled")
	} else {
		row(out, "cache", fmt.Sprintf("%s (%s)", ttl, filepath.Join(a.env.CacheDir(), cache.FileName)))
	}

	row(out, "status", okColor.Sprint("ok"))
	return nil
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprintf("%-9s", label), value)
}
