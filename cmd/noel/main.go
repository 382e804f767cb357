package main

import (
	"context"
	"os"

	"github.com/ayusman/noel/internal/logging"
)

func main() {
	logger, _ := logging.New(os.Stderr, "info")

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.Command().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
