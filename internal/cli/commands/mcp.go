package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kutbudev/todoflow/internal/mcp"
	"github.com/urfave/cli/v2"
)

// NewMcpCommand manages the MCP stdio server.
func NewMcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "MCP (Model Context Protocol) server management",
		Subcommands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start MCP server (stdio)",
				Action: func(c *cli.Context) error {
					client, err := newClient()
					if err != nil {
						return err
					}
					return mcp.ServeStdio(c.Context, client)
				},
			},
			{
				Name:  "config",
				Usage: "Print MCP config examples for clients",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "client",
						Aliases: []string{"c"},
						Usage:   "target client (generic|codex)",
						Value:   "generic",
					},
				},
				Action: func(c *cli.Context) error {
					switch strings.ToLower(c.String("client")) {
					case "codex":
						printCodexConfig(c.App.Writer)
					default:
						printGenericConfig(c.App.Writer)
					}
					return nil
				},
			},
			{
				Name:  "tools",
				Usage: "List available MCP tools",
				Action: func(c *cli.Context) error {
					tools, err := mcp.ToolDefinitions(c.Context)
					if err != nil {
						return err
					}
					for _, t := range tools {
						fmt.Fprintf(c.App.Writer, "%-14s %s\n", t.Name, t.Description)
					}
					return nil
				},
			},
		},
	}
}

func printGenericConfig(w io.Writer) {
	cfg := map[string]interface{}{
		"mcpServers": map[string]interface{}{
			"todoflow": map[string]interface{}{
				"command": "todoflow",
				"args":    []string{"mcp", "serve"},
			},
		},
	}
	b, _ := json.MarshalIndent(cfg, "", "  ")
	fmt.Fprintln(w, string(b))
}

func printCodexConfig(w io.Writer) {
	fmt.Fprintln(w, "# Add the following to ~/.codex/config.toml (merge with existing settings)")
	fmt.Fprintln(w, "[mcp_servers.todoflow]")
	fmt.Fprintln(w, "command = \"todoflow\"")
	fmt.Fprintln(w, "args = [\"mcp\", \"serve\"]")
	fmt.Fprintln(w, "enabled = true")
}
