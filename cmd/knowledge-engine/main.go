package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected.
// It serves queries line by line from stdin until EOF or a shutdown signal
func run(
	logger *zap.Logger,
	service *core.KnowledgeService,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	logger.Info("Ready for queries")
	fmt.Println("Enter a query per line (Ctrl-D to quit).")

loop:
	for {
		select {
		case <-sigCh:
			logger.Info("Shutting down...")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			query := strings.TrimSpace(line)
			if query == "" {
				continue
			}
			printResult(service.Answer(ctx, query))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}

func printResult(result *core.AggregatedResult) {
	if result.BestAnswer != nil {
		fmt.Println(result.BestAnswer.Text)
		for _, item := range result.BestAnswer.Items {
			fmt.Printf("  - %s\n", item)
		}
		if result.BestAnswer.URL != "" {
			fmt.Printf("  %s\n", result.BestAnswer.URL)
		}
		fmt.Printf("  [%s]\n", result.BestAnswer.Source)
		return
	}

	if len(result.AllResults) > 0 {
		fmt.Println("No direct answer; closest matches:")
		for _, r := range result.AllResults {
			if r.Text != "" {
				fmt.Printf("  - %s [%s]\n", r.Text, r.Source)
				continue
			}
			for _, item := range r.Items {
				fmt.Printf("  - %s [%s]\n", item, r.Source)
			}
		}
		return
	}

	fmt.Println("No answer found.")
}
