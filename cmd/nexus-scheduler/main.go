package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
)

const serviceName = "nexus-scheduler"

func main() {
	app := &cli.App{
		Name:  serviceName,
		Usage: "order pipeline scheduler for the agency",
		Description: fmt.Sprintf(
			"%v runs the order pipeline: vetting, dispatch, invoicing and payment watching.\nFor help on any individual command run <%v COMMAND -h>",
			serviceName, serviceName,
		),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file",
			},
		},
		Commands: cli.Commands{
			runCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fail to run %v: %v\n", serviceName, err)
		os.Exit(1)
	}
}
