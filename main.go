package main

import (
	"os"

	"github.com/odanree/llm-local-assistant-sub008/cmd"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

func main() {
	logger := workspace.GetLogger(false)
	// Defer closing the logger to ensure all buffered logs are written
	defer func() {
		if err := logger.Close(); err != nil {
			os.Stderr.WriteString("Error closing logger: " + err.Error() + "\n")
		}
	}()

	if err := cmd.Execute(); err != nil {
		logger.Logf("Application error: %v", err)
		os.Exit(1)
	}
}
