package main

import (
	"fmt"

	"github.com/scharc/snaprepo/internal/cli"
	"github.com/scharc/snaprepo/internal/utils"
)

// main is the entry point for the snaprepo command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf("initializing logger: %w", loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(applicationExecutionError.Error())
	}
}
