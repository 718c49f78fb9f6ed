package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

// NewTemplateCommand manages reusable todo templates.
func NewTemplateCommand() *cli.Command {
	return &cli.Command{
		Name:    "template",
		Aliases: []string{"tpl"},
		Usage:   "Manage todo templates",
		Subcommands: []*cli.Command{
			{
				Name:      "make",
				Usage:     "Turn a todo into a template",
				ArgsUsage: "[todo-id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "template name (defaults to the title)"},
				},
				Action: func(c *cli.Context) error {
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					client, err := newClient()
					if err != nil {
						return err
					}
					todo, err := client.MakeTemplate(id, c.String("name"))
					if err != nil {
						return fmt.Errorf("error making template: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "📋 Template '%s' saved (#%d)\n", derefString(todo.TemplateName), todo.ID)
					return nil
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List templates",
				Action: func(c *cli.Context) error {
					client, err := newClient()
					if err != nil {
						return err
					}
					templates, err := client.ListTemplates()
					if err != nil {
						return fmt.Errorf("error listing templates: %w", err)
					}
					if len(templates) == 0 {
						fmt.Fprintln(c.App.Writer, "No templates yet. Use 'todoflow template make <id>' to create one.")
						return nil
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tTITLE")
					fmt.Fprintln(w, "--\t----\t-----")
					for _, t := range templates {
						fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, derefString(t.TemplateName), truncateString(t.Title, 50))
					}
					return w.Flush()
				},
			},
			{
				Name:      "use",
				Usage:     "Create a todo from a template",
				ArgsUsage: "[template-id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "override the title"},
					&cli.StringFlag{Name: "due", Usage: "due date, YYYY-MM-DD or RFC 3339"},
				},
				Action: func(c *cli.Context) error {
					id, err := parseID(c.Args().First())
					if err != nil {
						return err
					}
					client, err := newClient()
					if err != nil {
						return err
					}
					todo, err := client.InstantiateTemplate(id, c.String("title"), c.String("due"))
					if err != nil {
						return fmt.Errorf("error using template: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "✅ Todo #%d created from template: %s\n", todo.ID, todo.Title)
					return nil
				},
			},
		},
	}
}
