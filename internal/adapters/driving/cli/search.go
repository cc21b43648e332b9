package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

var (
	searchLimit    int
	searchBudget   int
	searchLocation string
	searchTime     string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search shops",
	Long: `Performs hybrid search across the shop corpus.
Combines synonym-expanded keyword search with vector similarity when an
embedding provider is configured, then applies the budget, location and
time filters.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().IntVar(&searchBudget, "budget", 0, "maximum menu price in won")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "area such as a district or station")
	searchCmd.Flags().StringVar(&searchTime, "time", "", "when to eat")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	sc := domain.SearchContext{
		Budget:   searchBudget,
		Location: searchLocation,
		Time:     searchTime,
	}
	results, err := searchService.SearchByContext(commandContext(cmd), query, sc, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	cmd.Print(newRenderer(cmd.OutOrStdout()).results(results))
	return nil
}
