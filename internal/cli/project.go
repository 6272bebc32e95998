package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apphttp "taskboard/internal/adapter/http"
	"taskboard/internal/core/model/response"
	"taskboard/internal/core/port"
)

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
		Long: `Manage projects in the stored document.

The default project is the one selected when the document is loaded.

Examples:
  taskboard project add Work
  taskboard project ls
  taskboard project default <id>`,
	}

	cmd.AddCommand(a.projectAddCmd())
	cmd.AddCommand(a.projectListCmd())
	cmd.AddCommand(a.projectRenameCmd())
	cmd.AddCommand(a.projectRemoveCmd())
	cmd.AddCommand(a.projectDefaultCmd())
	cmd.AddCommand(a.projectClearCmd())

	return cmd
}

func (a *app) projectAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name...]",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					p := m.CreateProject(strings.Join(args, " "))
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Name)
					return nil
				})
			})
		},
	}
}

func (a *app) projectListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.View(func(m port.ProjectService) error {
					projects := make([]response.ProjectResponse, 0, len(m.Projects()))
					for _, p := range m.Projects() {
						projects = append(projects, response.NewProjectResponse(p, m.ActiveProject() == p, m.IsDefaultProject(p.ID)))
					}

					if asJSON {
						return printJSON(cmd.OutOrStdout(), projects)
					}

					tw := newTable(cmd.OutOrStdout())
					fmt.Fprintln(tw, "ID\tNAME\tDEFAULT\tDONE\tPENDING")
					for _, p := range projects {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, mark(p.IsDefault), p.Done, p.Pending)
					}
					return tw.Flush()
				})
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func (a *app) projectRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name...>",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					p := m.RenameProject(args[0], strings.Join(args[1:], " "))
					if p == nil {
						return fmt.Errorf("project %q not found", args[0])
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Name)
					return nil
				})
			})
		},
	}
}

func (a *app) projectRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a project and its todos",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					if !m.DeleteProjectByID(args[0]) {
						return fmt.Errorf("project %q not found", args[0])
					}
					return nil
				})
			})
		},
	}
}

func (a *app) projectDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default [id]",
		Short: "Show the default project, or toggle it to id",
		Long: `Without arguments, print the default project. With an id, make that
project the default; naming the current default clears it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				if len(args) == 0 {
					return c.Session.View(func(m port.ProjectService) error {
						if p := m.DefaultProject(); p != nil {
							fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Name)
						}
						return nil
					})
				}

				return c.Session.Do(ctx, func(m port.ProjectService) error {
					if m.ProjectByID(args[0]) == nil {
						return fmt.Errorf("project %q not found", args[0])
					}

					if p := m.SetDefaultProject(args[0]); p != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, p.Name)
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "default cleared")
					}
					return nil
				})
			})
		},
	}
}

func (a *app) projectClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					m.DeleteAllProjects()
					return nil
				})
			})
		},
	}
}
