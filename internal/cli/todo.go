package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apphttp "taskboard/internal/adapter/http"
	"taskboard/internal/core/domain"
	"taskboard/internal/core/model/response"
	"taskboard/internal/core/port"
)

func (a *app) todoCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:     "todo",
		Aliases: []string{"todos"},
		Short:   "Manage the todos of a project",
		Long: `Manage todos. Commands act on the default project unless --project is set.

Examples:
  taskboard todo add "Finish report" --due 2024-06-20 --priority urgent
  taskboard todo done <id>
  taskboard todo edit <id> --clear-due`,
	}

	cmd.PersistentFlags().StringVar(&projectID, "project", "", "project id (defaults to the default project)")

	cmd.AddCommand(a.todoAddCmd(&projectID))
	cmd.AddCommand(a.todoListCmd(&projectID))
	cmd.AddCommand(a.todoEditCmd(&projectID))
	cmd.AddCommand(a.todoToggleCmd(&projectID, "done", "Toggle whether a todo is completed", (*domain.Todo).ToggleCompleted))
	cmd.AddCommand(a.todoToggleCmd(&projectID, "expand", "Toggle whether a todo shows its details", (*domain.Todo).ToggleExpanded))
	cmd.AddCommand(a.todoRemoveCmd(&projectID))
	cmd.AddCommand(a.todoClearCmd(&projectID))

	return cmd
}

func (a *app) todoAddCmd(projectID *string) *cobra.Command {
	var description, due, priority string

	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			var dueDate *domain.Date
			if due != "" {
				d, err := domain.ParseDate(due)
				if err != nil {
					return err
				}
				dueDate = &d
			}

			prio := domain.DefaultPriority
			if priority != "" {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				prio = p
			}

			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					p, err := resolveProject(m, *projectID)
					if err != nil {
						return err
					}

					t := p.CreateTodo(strings.Join(args, " "), description, dueDate, prio)
					m.Touch(domain.Event{Kind: domain.EventTodoCreated, ProjectID: p.ID, TodoID: t.ID})
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.ID, t.Title)
					return nil
				})
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", priorityUsage())

	return cmd
}

func priorityUsage() string {
	names := make([]string, 0, len(domain.Priorities()))
	for _, p := range domain.Priorities() {
		names = append(names, p.String())
	}

	return "Priority: " + strings.Join(names, ", ")
}

func (a *app) todoListCmd(projectID *string) *cobra.Command {
	var asJSON, byPriority bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the todos of a project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.View(func(m port.ProjectService) error {
					p, err := resolveProject(m, *projectID)
					if err != nil {
						return err
					}

					todos := p.Todos()
					if byPriority {
						todos = p.TodosByPriority()
					}

					today := domain.Today()

					if asJSON {
						data := make([]response.TodoResponse, 0, len(todos))
						for _, t := range todos {
							data = append(data, response.NewTodoResponse(p.ID, t, today))
						}
						return printJSON(cmd.OutOrStdout(), data)
					}

					tw := newTable(cmd.OutOrStdout())
					fmt.Fprintln(tw, "ID\tTITLE\tDUE\tPRIORITY\tDONE\tOVERDUE")
					for _, t := range todos {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, dueDate(t), t.Priority, mark(t.Completed), mark(t.IsOverdue(today)))
					}
					return tw.Flush()
				})
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&byPriority, "by-priority", false, "Most pressing first instead of creation order")

	return cmd
}

func (a *app) todoEditCmd(projectID *string) *cobra.Command {
	var title, description, due, priority string
	var clearDue bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.TodoPatch

			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}

			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}

			switch {
			case clearDue:
				patch.DueDate = &domain.NullDate{}
			case due != "":
				d, err := domain.ParseDate(due)
				if err != nil {
					return err
				}
				nd := domain.NullDateOf(d)
				patch.DueDate = &nd
			}

			if priority != "" {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}

			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}

			return a.mutateTodo(cmd, *projectID, args[0], func(t *domain.Todo) {
				t.UpdateData(patch)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", priorityUsage())
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")

	return cmd
}

func (a *app) todoToggleCmd(projectID *string, use, short string, toggle func(*domain.Todo)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutateTodo(cmd, *projectID, args[0], toggle)
		},
	}
}

func (a *app) mutateTodo(cmd *cobra.Command, projectID, todoID string, apply func(*domain.Todo)) error {
	return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
		return c.Session.Do(ctx, func(m port.ProjectService) error {
			p, err := resolveProject(m, projectID)
			if err != nil {
				return err
			}

			t := p.TodoByID(todoID)
			if t == nil {
				return fmt.Errorf("todo %q not found", todoID)
			}

			apply(t)
			m.Touch(domain.Event{Kind: domain.EventTodoUpdated, ProjectID: p.ID, TodoID: t.ID})
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.ID, t.Title)
			return nil
		})
	})
}

func (a *app) todoRemoveCmd(projectID *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					p, err := resolveProject(m, *projectID)
					if err != nil {
						return err
					}

					if !p.DeleteTodoByID(args[0]) {
						return fmt.Errorf("todo %q not found", args[0])
					}

					m.Touch(domain.Event{Kind: domain.EventTodoDeleted, ProjectID: p.ID, TodoID: args[0]})
					return nil
				})
			})
		},
	}
}

func (a *app) todoClearCmd(projectID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every todo of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withContainer(cmd, func(ctx context.Context, c *apphttp.Container) error {
				return c.Session.Do(ctx, func(m port.ProjectService) error {
					p, err := resolveProject(m, *projectID)
					if err != nil {
						return err
					}

					p.DeleteAllTodos()
					m.Touch(domain.Event{Kind: domain.EventTodoDeleted, ProjectID: p.ID})
					return nil
				})
			})
		},
	}
}
