package main

import (
	"fmt"
	"os"

	"github.com/fioncat/otree/cmd"
	"github.com/fioncat/otree/pkg/logger"
	"github.com/fioncat/otree/pkg/settings"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", settings.CliBinaryName, err)
		exitCode = 1
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
