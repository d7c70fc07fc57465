package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/shoplog/internal/config"
	"github.com/verte-zerg/shoplog/internal/report"
	"github.com/verte-zerg/shoplog/internal/store"
)

var catalogCurrency string

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the effective price catalog",
		Args:  cobra.NoArgs,
		RunE:  runCatalogCmd,
	}
	catalogCmd.Flags().StringVar(&catalogCurrency, "currency", defaultCurrency, "currency label")

	catalogCmd.AddCommand(&cobra.Command{
		Use:   "import <file.toml>",
		Short: "Import a [prices] table into the catalog database",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogImportCmd,
	})
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "set <name> <price>",
		Short: "Set one price in the catalog database",
		Args:  cobra.ExactArgs(2),
		RunE:  runCatalogSetCmd,
	})
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove one price from the catalog database",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogRmCmd,
	})
	return catalogCmd
}

func runCatalogCmd(cmd *cobra.Command, _ []string) error {
	applyStringConfig(cmd, "currency", &catalogCurrency, fileCfg.Analyze.Currency)
	cat, err := loadCatalog(cmd.Context(), catalogDBPath)
	if err != nil {
		return err
	}
	return report.RenderCatalog(cmd.OutOrStdout(), cat, catalogCurrency)
}

func runCatalogImportCmd(cmd *cobra.Command, args []string) error {
	prices, err := config.LoadPriceFile(args[0])
	if err != nil {
		return err
	}
	st, path, err := openCatalogStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if err := st.ImportPrices(cmd.Context(), prices); err != nil {
		return fmt.Errorf("failed to import prices: %w", err)
	}
	log.Info("imported prices", zap.String("db", path), zap.Int("prices", len(prices)))
	logErrf("Imported %d prices into %s\n", len(prices), path)
	return nil
}

func runCatalogSetCmd(cmd *cobra.Command, args []string) error {
	price, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", args[1], err)
	}
	st, _, err := openCatalogStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if err := st.UpsertPrice(cmd.Context(), args[0], price); err != nil {
		return fmt.Errorf("failed to set price: %w", err)
	}
	return nil
}

func runCatalogRmCmd(cmd *cobra.Command, args []string) error {
	st, _, err := openCatalogStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	if err := st.DeletePrice(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove price: %w", err)
	}
	return nil
}

func openCatalogStore() (*store.Store, string, error) {
	path := catalogDBPath
	if path == "" {
		path = config.DefaultCatalogDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open catalog db: %w", err)
	}
	return st, path, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close catalog db: %v\n", err)
	}
}
