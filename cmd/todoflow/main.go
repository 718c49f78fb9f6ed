package main

import (
	"log"
	"os"

	"github.com/kutbudev/todoflow/internal/cli/commands"
	"github.com/urfave/cli/v2"
)

// Version will be set during build with ldflags
var Version = "1.0.0"

func main() {
	app := &cli.App{
		Name:     "todoflow",
		Usage:    "Task management from the terminal",
		Version:  Version,
		Commands: commands.Commands(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
