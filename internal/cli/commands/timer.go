package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// NewTimerCommand groups the time tracker subcommands.
func NewTimerCommand() *cli.Command {
	return &cli.Command{
		Name:  "timer",
		Usage: "Track time spent on a todo",
		Subcommands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "Start the timer (sets the todo in progress)",
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
					todo, err := client.StartTimer(id)
					if err != nil {
						return fmt.Errorf("error starting timer: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "⏱️  Timer started on #%d: %s\n", todo.ID, todo.Title)
					return nil
				},
			},
			{
				Name:      "stop",
				Usage:     "Stop the running timer and record the interval",
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
					todo, err := client.StopTimer(id)
					if err != nil {
						return fmt.Errorf("error stopping timer: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "⏹️  Timer stopped on #%d, tracked %s in total\n", todo.ID, formatMinutes(todo.ActualDuration))
					return nil
				},
			},
			{
				Name:      "status",
				Usage:     "Show the timer state",
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
					state, err := client.TimerStatus(id)
					if err != nil {
						return fmt.Errorf("error getting timer: %w", err)
					}
					out := c.App.Writer
					if state.Running {
						fmt.Fprintf(out, "Running since %s (%s)\n", formatDateTime(state.StartedAt),
							time.Duration(state.ElapsedSeconds)*time.Second)
					} else {
						fmt.Fprintln(out, "Not running")
					}
					fmt.Fprintf(out, "Recorded: %s in %d entries\n", time.Duration(state.TotalSeconds)*time.Second, len(state.Entries))
					return nil
				},
			},
		},
	}
}

// NewPomodoroCommand records a finished pomodoro.
func NewPomodoroCommand() *cli.Command {
	return &cli.Command{
		Name:      "pomodoro",
		Usage:     "Record a completed pomodoro",
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
			todo, err := client.CompletePomodoro(id)
			if err != nil {
				return fmt.Errorf("error recording pomodoro: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "🍅 #%d now has %d pomodoros\n", todo.ID, todo.PomodoroCount)
			return nil
		},
	}
}
