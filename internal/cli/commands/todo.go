package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kutbudev/todoflow/internal/api"
	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/urfave/cli/v2"
)

// NewListCommand lists todos.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List todos",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending, in_progress, completed or cancelled"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium, high or urgent"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "category name"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "search title and description"},
			&cli.StringFlag{Name: "sort", Usage: "created_at, due_date, priority or title", Value: "created_at"},
			&cli.BoolFlag{Name: "asc", Usage: "sort ascending"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "include archived todos"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 50},
		},
		Action: func(c *cli.Context) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			params := api.ListParams{
				Status:          c.String("status"),
				Priority:        c.String("priority"),
				Category:        c.String("category"),
				Search:          c.String("search"),
				SortBy:          c.String("sort"),
				IncludeArchived: c.Bool("all"),
				Limit:           c.Int("limit"),
			}
			if c.Bool("asc") {
				params.SortOrder = "asc"
			}
			todos, err := client.ListTodos(params)
			if err != nil {
				return fmt.Errorf("error listing todos: %w", err)
			}

			out := c.App.Writer
			if len(todos) == 0 {
				fmt.Fprintln(out, "No todos found. Use 'todoflow add' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
			fmt.Fprintln(w, "--\t------\t--------\t---\t-----")
			for _, t := range todos {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					t.ID, t.Status, t.Priority, formatDate(t.DueDate), truncateString(t.Title, 50))
			}
			return w.Flush()
		},
	}
}

// NewAddCommand creates a todo.
func NewAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a new todo",
		ArgsUsage: "[title]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium, high, urgent (or L/M/H/U)"},
			&cli.StringFlag{Name: "due", Usage: "due date, YYYY-MM-DD or RFC 3339"},
			&cli.UintFlag{Name: "category", Usage: "category id"},
			&cli.UintFlag{Name: "parent", Usage: "parent todo id (creates a subtask)"},
			&cli.IntFlag{Name: "estimate", Aliases: []string{"e"}, Usage: "estimated minutes"},
			&cli.StringFlag{Name: "repeat", Usage: "daily, weekly, monthly or yearly"},
			&cli.UintSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag id (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			title := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if title == "" {
				return fmt.Errorf("todo title is required")
			}

			fields := map[string]interface{}{"title": title}
			for flag, key := range map[string]string{
				"description": "description",
				"priority":    "priority",
				"due":         "due_date",
				"repeat":      "recurrence_pattern",
			} {
				if v := c.String(flag); v != "" {
					fields[key] = v
				}
			}
			if v := c.Uint("category"); v != 0 {
				fields["category_id"] = v
			}
			if v := c.Uint("parent"); v != 0 {
				fields["parent_id"] = v
			}
			if c.IsSet("estimate") {
				fields["estimated_duration"] = c.Int("estimate")
			}
			if tags := c.UintSlice("tag"); len(tags) > 0 {
				fields["tag_ids"] = tags
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			todo, err := client.CreateTodo(fields)
			if err != nil {
				return fmt.Errorf("error creating todo: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "✅ Todo #%d created: %s\n", todo.ID, todo.Title)
			return nil
		},
	}
}

// NewShowCommand prints a todo with its relationships.
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show details for a todo",
		ArgsUsage: "[todo-id]",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			todo, err := client.GetTodo(id)
			if err != nil {
				return fmt.Errorf("error getting todo: %w", err)
			}
			printTodo(c, todo)
			return nil
		},
	}
}

func printTodo(c *cli.Context, t *models.Todo) {
	out := c.App.Writer
	fmt.Fprintf(out, "Todo #%d: %s\n", t.ID, t.Title)
	fmt.Fprintln(out, "----------------------------------")
	fmt.Fprintf(out, "Status:      %s\n", t.Status)
	fmt.Fprintf(out, "Priority:    %s\n", t.Priority)
	fmt.Fprintf(out, "Due:         %s\n", formatDateTime(t.DueDate))
	if t.Category != nil {
		fmt.Fprintf(out, "Category:    %s\n", t.Category.Name)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(out, "Tags:        %s\n", strings.Join(t.TagNames(), ", "))
	}
	fmt.Fprintf(out, "Estimate:    %s\n", formatMinutes(t.EstimatedDuration))
	fmt.Fprintf(out, "Tracked:     %s\n", formatMinutes(t.ActualDuration))
	if t.PomodoroCount > 0 || t.PomodoroTarget != nil {
		target := "-"
		if t.PomodoroTarget != nil {
			target = fmt.Sprint(*t.PomodoroTarget)
		}
		fmt.Fprintf(out, "Pomodoros:   %d/%s\n", t.PomodoroCount, target)
	}
	if t.RecurrencePattern != "" && t.RecurrencePattern != models.RecurrenceNone {
		fmt.Fprintf(out, "Repeats:     %s\n", t.RecurrencePattern)
	}
	if d := derefString(t.Description); d != "" {
		fmt.Fprintf(out, "\n%s\n", d)
	}
	if len(t.Subtasks) > 0 {
		fmt.Fprintln(out, "\nSubtasks:")
		for _, s := range t.Subtasks {
			fmt.Fprintf(out, "  #%d [%s] %s\n", s.ID, s.Status, s.Title)
		}
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintln(out, "\nDepends on:")
		for _, d := range t.Dependencies {
			fmt.Fprintf(out, "  #%d [%s] %s\n", d.ID, d.Status, d.Title)
		}
	}
	if len(t.Comments) > 0 {
		fmt.Fprintln(out, "\nComments:")
		for _, cm := range t.Comments {
			fmt.Fprintf(out, "  %s  %s\n", cm.CreatedAt.Local().Format("2006-01-02 15:04"), cm.Content)
		}
	}
}

// NewDoneCommand marks todos completed.
func NewDoneCommand() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a todo completed",
		ArgsUsage: "[todo-id]",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			todo, err := client.UpdateTodo(id, map[string]interface{}{"status": "completed"})
			if err != nil {
				return fmt.Errorf("error completing todo: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "✅ Completed #%d: %s\n", todo.ID, todo.Title)
			return nil
		},
	}
}

// NewRemoveCommand deletes a todo.
func NewRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a todo",
		ArgsUsage: "[todo-id]",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			if err := client.DeleteTodo(id); err != nil {
				return fmt.Errorf("error deleting todo: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "🗑️  Deleted #%d\n", id)
			return nil
		},
	}
}

// NewRecurCommand creates the next instance of a recurring todo.
func NewRecurCommand() *cli.Command {
	return &cli.Command{
		Name:      "recur",
		Usage:     "Create the next occurrence of a recurring todo",
		ArgsUsage: "[todo-id]",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			todo, err := client.CreateRecurring(id)
			if err != nil {
				return fmt.Errorf("error creating next occurrence: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "🔁 Created #%d due %s\n", todo.ID, formatDate(todo.DueDate))
			return nil
		},
	}
}

// NewSuggestCommand prints heuristic hints for a todo.
func NewSuggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Show suggestions for a todo",
		ArgsUsage: "[todo-id]",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			suggestions, err := client.Suggestions(id)
			if err != nil {
				return fmt.Errorf("error getting suggestions: %w", err)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(c.App.Writer, "No suggestions. Looks good.")
				return nil
			}
			icons := map[string]string{"warning": "⚠️ ", "info": "ℹ️ ", "tip": "💡"}
			for _, s := range suggestions {
				fmt.Fprintf(c.App.Writer, "%s %s\n", icons[s.Type], s.Message)
			}
			return nil
		},
	}
}
