package main

import (
	"context"

	"github.com/goliatone/go-flavor-inventory/config"
	"github.com/goliatone/go-flavor-inventory/pkg/di"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "inventory",
		Short:         "Flavor inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "Path to the YAML config file")

	cmd.AddCommand(newServeCmd(opts), newImportCmd(opts), newMigrateCmd(opts))
	return cmd
}

// container loads the config and opens a migrated container.
func (o *rootOptions) container(ctx context.Context) (*di.Container, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	c, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Migrate(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container(cmd.Context())
			if err != nil {
				return err
			}
			return c.Close()
		},
	}
}
