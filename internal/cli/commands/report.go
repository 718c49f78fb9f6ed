package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/kutbudev/todoflow/internal/api"
	"github.com/kutbudev/todoflow/internal/config"
	"github.com/urfave/cli/v2"
)

func userFlag() cli.Flag {
	return &cli.UintFlag{Name: "user", Aliases: []string{"u"}, Usage: "limit to a user (defaults to the configured user)"}
}

// userScope returns --user, or the configured default user when the flag is absent.
func userScope(c *cli.Context) (*uint, error) {
	if c.IsSet("user") {
		id := c.Uint("user")
		return &id, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.DefaultUserID, nil
}

// NewStatsCommand prints the statistics summary.
func NewStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show todo statistics",
		Flags: []cli.Flag{userFlag()},
		Action: func(c *cli.Context) error {
			userID, err := userScope(c)
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			s, err := client.Stats(userID)
			if err != nil {
				return fmt.Errorf("error getting stats: %w", err)
			}

			out := c.App.Writer
			fmt.Fprintln(out, "📊 Todo statistics")
			fmt.Fprintln(out, "----------------------------------")
			fmt.Fprintf(out, "Total:        %d\n", s.Total)
			fmt.Fprintf(out, "Completed:    %d (%.1f%%)\n", s.Completed, s.CompletionRate)
			fmt.Fprintf(out, "In progress:  %d\n", s.InProgress)
			fmt.Fprintf(out, "Pending:      %d\n", s.Pending)
			fmt.Fprintf(out, "Overdue:      %d\n", s.Overdue)
			fmt.Fprintf(out, "Due today:    %d\n", s.DueToday)
			fmt.Fprintf(out, "Tracked:      %dm\n", s.TotalTimeTracked)
			fmt.Fprintf(out, "Pomodoros:    %d\n", s.TotalPomodoros)
			fmt.Fprintf(out, "Streak:       %d days\n", s.Streak)
			if s.AverageCompletionTime != nil {
				fmt.Fprintf(out, "Avg to done:  %.1fh\n", *s.AverageCompletionTime)
			}
			if len(s.ByCategory) > 0 {
				names := make([]string, 0, len(s.ByCategory))
				for name := range s.ByCategory {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Fprintln(out, "\nBy category:")
				for _, name := range names {
					fmt.Fprintf(out, "  %-16s %d\n", name, s.ByCategory[name])
				}
			}
			return nil
		},
	}
}

// NewTrendsCommand prints per-day created/completed counts.
func NewTrendsCommand() *cli.Command {
	return &cli.Command{
		Name:  "trends",
		Usage: "Show daily created and completed counts",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Aliases: []string{"d"}, Value: 7},
			userFlag(),
		},
		Action: func(c *cli.Context) error {
			userID, err := userScope(c)
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			tr, err := client.Trends(c.Int("days"), userID)
			if err != nil {
				return fmt.Errorf("error getting trends: %w", err)
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDAY\tCREATED\tCOMPLETED\tMINUTES")
			for i, date := range tr.Dates {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
					date, tr.Labels[i], tr.Created[i], tr.Completed[i], tr.TimeSpent[i])
			}
			return w.Flush()
		},
	}
}

// NewExportCommand downloads todos as json, csv or ics.
func NewExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export todos as json, csv or ics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "file to write (stdout when omitted)"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "include archived todos"},
		},
		Action: func(c *cli.Context) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			format := strings.ToLower(c.String("format"))
			data, err := client.Export(format, api.ListParams{
				Status:          c.String("status"),
				Category:        c.String("category"),
				IncludeArchived: c.Bool("all"),
			})
			if err != nil {
				return fmt.Errorf("error exporting todos: %w", err)
			}

			path := c.String("output")
			if path == "" {
				_, err := c.App.Writer.Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("could not write %s: %w", path, err)
			}
			fmt.Fprintf(c.App.Writer, "✅ Exported %d bytes to %s\n", len(data), path)
			return nil
		},
	}
}

// NewBulkCommand applies one action to many todos.
func NewBulkCommand() *cli.Command {
	action := func(name, verb string) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     verb + " several todos",
			ArgsUsage: "[todo-id...]",
			Action: func(c *cli.Context) error {
				ids, err := parseIDs(c.Args().Slice())
				if err != nil {
					return err
				}
				client, err := newClient()
				if err != nil {
					return err
				}
				res, err := client.Bulk(name, ids)
				if err != nil {
					return fmt.Errorf("error running bulk %s: %w", name, err)
				}
				fmt.Fprintf(c.App.Writer, "✅ %s %d of %d todos\n", verb, res.Matched, res.Requested)
				return nil
			},
		}
	}
	return &cli.Command{
		Name:  "bulk",
		Usage: "Complete, archive or delete several todos at once",
		Subcommands: []*cli.Command{
			action("complete", "Completed"),
			action("archive", "Archived"),
			action("delete", "Deleted"),
		},
	}
}
