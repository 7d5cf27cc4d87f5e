package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Ask a single question and exit",
	Example: `  worklens ask "show me the current sprint"
  worklens ask assign AG-12 to Dana`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coordinator, err := buildCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		resp := coordinator.RouteAndExecute(cmd.Context(), query, nil)
		renderResponse(resp)
		if resp.Success && saveState != nil {
			saveState()
		}
		if !resp.Success {
			return fmt.Errorf("request did not complete")
		}
		return nil
	},
}
