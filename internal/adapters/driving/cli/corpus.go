package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rebuildVectors bool
	shopsJSON      bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the search index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Reload the corpus and rebuild the keyword index",
	Long: `Reloads the shop corpus from its source and rebuilds the keyword index.
With --vectors every corpus document is also embedded and written to the
vector store.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

var shopsCmd = &cobra.Command{
	Use:   "shops [shop-id]",
	Short: "List shops, or show one shop",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShops,
}

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the shop corpus",
}

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the loaded corpus into the local database",
	Args:  cobra.NoArgs,
	RunE:  runCorpusExport,
}

func init() {
	indexRebuildCmd.Flags().BoolVar(&rebuildVectors, "vectors", false, "also embed documents into the vector store")
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)

	shopsCmd.Flags().BoolVar(&shopsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(shopsCmd)

	corpusCmd.AddCommand(corpusExportCmd)
	rootCmd.AddCommand(corpusCmd)
}

var errNoCorpusService = errors.New("corpus service not configured")

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errNoCorpusService
	}

	ctx := commandContext(cmd)
	summary, err := corpusService.Reload(ctx)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	cmd.Printf("Indexed %d shops, %d menus, %d reviews, %d coupons.\n",
		summary.Shops, summary.Menus, summary.Reviews, summary.Coupons)

	if !rebuildVectors {
		return nil
	}
	if vectorSyncer == nil {
		return errors.New("vector search not configured")
	}
	n, err := vectorSyncer.SyncVectors(ctx)
	if err != nil {
		return fmt.Errorf("vector sync failed after %d documents: %w", n, err)
	}
	cmd.Printf("Embedded %d documents.\n", n)
	return nil
}

func runShops(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errNoCorpusService
	}

	if len(args) == 1 {
		shop, err := corpusService.Shop(args[0])
		if err != nil {
			return fmt.Errorf("failed to get shop: %w", err)
		}
		if shopsJSON {
			return writeJSON(cmd.OutOrStdout(), shop)
		}
		cmd.Printf("%s (%s)\n", shop.Name, shop.Category)
		if shop.Address != "" {
			cmd.Printf("  %s\n", shop.Address)
		}
		if shop.OpenHour != "" && shop.CloseHour != "" {
			cmd.Printf("  %s - %s\n", shop.OpenHour, shop.CloseHour)
		}
		for _, m := range shop.Menus {
			cmd.Printf("  - %s %s\n", m.Name, menuPrice(m))
		}
		return nil
	}

	shops := corpusService.Shops()
	if shopsJSON {
		return writeJSON(cmd.OutOrStdout(), shops)
	}
	if len(shops) == 0 {
		cmd.Println("No shops loaded.")
		return nil
	}
	for i := range shops {
		cmd.Printf("  %-6s %s (%s), %d menus\n", shops[i].ID, shops[i].Name, shops[i].Category, len(shops[i].Menus))
	}
	return nil
}

func runCorpusExport(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errNoCorpusService
	}
	if corpusArchive == nil {
		return errors.New("database not configured")
	}

	if err := corpusService.Export(commandContext(cmd), corpusArchive); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	summary := corpusService.Summary()
	cmd.Printf("Exported %d shops to the database.\n", summary.Shops)
	return nil
}
