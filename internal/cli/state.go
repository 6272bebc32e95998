package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apphttp "taskboard/internal/adapter/http"
	"taskboard/internal/core/port"
)

func (a *app) stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or remove the stored document",
	}

	cmd.AddCommand(a.stateShowCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				c.Storage.Clear(ctx)
				return nil
			})
		},
	})

	return cmd
}

func (a *app) stateShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored document",
		Long: `Print the stored document. By default the document is decoded and
checked first, so a corrupt document is reported as nothing stored. --raw
prints the stored bytes as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				if raw {
					data, err := c.Storage.Raw(ctx)
					if errors.Is(err, port.ErrStateNotFound) {
						fmt.Fprintf(cmd.ErrOrStderr(), "nothing stored under %q\n", c.Storage.Key())
						return nil
					}
					if err != nil {
						return err
					}

					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}

				state := c.Storage.Load(ctx)
				if state == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "nothing stored under %q\n", c.Storage.Key())
					return nil
				}

				return printJSON(cmd.OutOrStdout(), state)
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored bytes without decoding")

	return cmd
}
