package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"worklens/internal/domain"
)

const historyWindow = 10

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(ctx context.Context) error {
	coordinator, err := buildCoordinator(ctx)
	if err != nil {
		return err
	}

	project := coordinator.Project()
	fmt.Printf("worklens: %s (%s), tools: %s\n", project.Name, project.Key, strings.Join(project.Tools, ", "))
	fmt.Println(`Ask about your project or request a change. Type "exit" to quit.`)

	var history []domain.Turn
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("worklens> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return nil
		}

		resp := coordinator.RouteAndExecute(ctx, query, history)
		renderResponse(resp)
		fmt.Println()

		if resp.Success && saveState != nil {
			saveState()
		}

		history = append(history, domain.Turn{Query: query, Response: resp.Content})
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
	}
}
