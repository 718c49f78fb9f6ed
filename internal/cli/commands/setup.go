package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kutbudev/todoflow/internal/api"
	"github.com/kutbudev/todoflow/internal/config"
	"github.com/kutbudev/todoflow/internal/credential"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// NewLoginCommand stores the API key used for every request.
func NewLoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Save the todoflowd API key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Usage: "API key (prompted for when omitted)"},
			&cli.StringFlag{Name: "url", Usage: "server base URL, e.g. http://localhost:8080/v1"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			if u := c.String("url"); u != "" {
				cfg.BaseURL = strings.TrimRight(u, "/")
				if err := config.SaveConfig(cfg); err != nil {
					return fmt.Errorf("could not save config: %w", err)
				}
			}

			key := strings.TrimSpace(c.String("key"))
			if key == "" {
				key, err = promptAPIKey(c)
				if err != nil {
					return err
				}
			}

			store, err := credential.NewStore()
			if err != nil {
				return err
			}
			if err := store.Save(key); err != nil {
				return err
			}

			out := c.App.Writer
			fmt.Fprintf(out, "✅ API key saved (%s)\n", store.Mode())
			if err := api.NewClient(cfg.BaseURL, key).Health(); err != nil {
				fmt.Fprintf(out, "⚠️  Server check failed: %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "✅ Connected to %s\n", cfg.BaseURL)
			return nil
		},
	}
}

// promptAPIKey reads the key without echo on a terminal, or a plain line
// from the app reader otherwise.
func promptAPIKey(c *cli.Context) (string, error) {
	fmt.Fprint(c.App.Writer, "Enter your API key: ")

	if f, ok := c.App.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.App.Writer)
		if err != nil {
			return "", fmt.Errorf("could not read API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("could not read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// NewConfigCommand shows and edits ~/.todoflow/config.json.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change client settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the current settings",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig()
					if err != nil {
						return err
					}
					path, _ := config.GetConfigPath()
					store, err := credential.NewStore()
					if err != nil {
						return err
					}

					key := "not set"
					if k, err := store.Load(); err == nil && k != "" {
						key = maskKey(k)
					}
					user := "-"
					if cfg.DefaultUserID != nil {
						user = fmt.Sprint(*cfg.DefaultUserID)
					}

					out := c.App.Writer
					fmt.Fprintf(out, "Config file:  %s\n", path)
					fmt.Fprintf(out, "Base URL:     %s\n", cfg.BaseURL)
					fmt.Fprintf(out, "Default user: %s\n", user)
					fmt.Fprintf(out, "API key:      %s (%s)\n", key, store.Mode())
					return nil
				},
			},
			{
				Name:  "set",
				Usage: "Change settings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "base-url", Usage: "server base URL"},
					&cli.UintFlag{Name: "user", Usage: "default user id (0 clears it)"},
				},
				Action: func(c *cli.Context) error {
					if !c.IsSet("base-url") && !c.IsSet("user") {
						return fmt.Errorf("nothing to set: pass --base-url or --user")
					}
					cfg, err := config.LoadConfig()
					if err != nil {
						return err
					}
					if c.IsSet("base-url") {
						cfg.BaseURL = strings.TrimRight(c.String("base-url"), "/")
					}
					if c.IsSet("user") {
						cfg.DefaultUserID = nil
						if id := c.Uint("user"); id != 0 {
							cfg.DefaultUserID = &id
						}
					}
					if err := config.SaveConfig(cfg); err != nil {
						return fmt.Errorf("could not save config: %w", err)
					}
					fmt.Fprintln(c.App.Writer, "✅ Config saved")
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "Remove the stored API key",
				Action: func(c *cli.Context) error {
					store, err := credential.NewStore()
					if err != nil {
						return err
					}
					if err := store.Delete(); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "✅ API key removed")
					return nil
				},
			},
		},
	}
}

func maskKey(k string) string {
	if len(k) <= 8 {
		return "****"
	}
	return k[:4] + "..." + k[len(k)-4:]
}
