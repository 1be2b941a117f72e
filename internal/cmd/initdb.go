package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create and seed the demo warehouse",
	Long: `Initdb creates the warehouse tables (users, products, orders,
order_items) and loads the demo rows. It is idempotent: existing
tables are kept and reseeded only when empty.

Examples:
  queryflow initdb
  queryflow initdb --db analytics.db`,
	Args: cobra.NoArgs,
	RunE: runInitdb,
}

func runInitdb(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	be, err := openWarehouse(settings)
	if err != nil {
		return err
	}
	defer be.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := be.Seed(ctx); err != nil {
		return fmt.Errorf("seed warehouse: %w", err)
	}

	fmt.Printf("Seeded demo warehouse at %s (%s)\n",
		settings.DatabasePath, strings.Join(settings.Tables, ", "))
	return nil
}
