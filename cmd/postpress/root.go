package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-postpress"
	"github.com/goliatone/go-postpress/cmd/postpress/internal/bootstrap"
)

// moduleBuilder is swapped in tests.
var moduleBuilder = bootstrap.BuildModule

type cliState struct {
	opts bootstrap.Options
	cfg  postpress.Config
}

func newRootCommand() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:           "postpress",
		Short:         "Publish markdown blog posts as static pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig(state.opts)
			if err != nil {
				return err
			}
			state.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&state.opts.ConfigFile, "config", "", "config file (default is ./postpress.yml)")
	root.PersistentFlags().StringVar(&state.opts.EnvFile, "env-file", "", "env file loaded before reading the environment (default is ./.env)")

	root.AddCommand(newServeCommand(state), newPublishCommand(state), newImportCommand(state))
	return root
}
