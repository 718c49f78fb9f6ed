package commands

import (
	"errors"

	"github.com/kutbudev/todoflow/internal/api"
	"github.com/kutbudev/todoflow/internal/config"
	"github.com/kutbudev/todoflow/internal/credential"
	"github.com/urfave/cli/v2"
)

// Commands returns every todoflow subcommand.
func Commands() []*cli.Command {
	return []*cli.Command{
		// Setup
		NewLoginCommand(),
		NewConfigCommand(),

		// Todos
		NewListCommand(),
		NewAddCommand(),
		NewShowCommand(),
		NewDoneCommand(),
		NewRemoveCommand(),
		NewRecurCommand(),
		NewSuggestCommand(),

		// Time tracking
		NewTimerCommand(),
		NewPomodoroCommand(),

		// Templates & bulk
		NewTemplateCommand(),
		NewBulkCommand(),

		// Reports
		NewStatsCommand(),
		NewTrendsCommand(),
		NewExportCommand(),

		// Meta
		NewMcpCommand(),
	}
}

// newClient builds an API client from ~/.todoflow/config.json and the stored key.
func newClient() (*api.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	store, err := credential.NewStore()
	if err != nil {
		return nil, err
	}
	key, err := store.Load()
	if err != nil && !errors.Is(err, credential.ErrNoAPIKey) {
		return nil, err
	}
	return api.NewClient(cfg.BaseURL, key), nil
}
