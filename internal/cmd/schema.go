package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/queryflow/pkg/queryflow"
	"github.com/randalmurphal/queryflow/pkg/queryflow/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [category]",
	Short: "Print the schema context the SQL generator sees",
	Long: `Schema introspects the warehouse and prints the table descriptions
that are injected into the generation prompt. With a category argument
only that category's tables are shown, exactly as a classified question
would scope them.

Categories: customer, product, sales, geographic, general.

Examples:
  queryflow schema
  queryflow schema sales`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	category := queryflow.CategoryGeneral
	if len(args) == 1 {
		category = queryflow.Category(strings.ToLower(strings.TrimSpace(args[0])))
		if !queryflow.ValidCategory(category) {
			return fmt.Errorf("unknown category %q (want customer, product, sales, geographic or general)", args[0])
		}
	}

	be, err := openWarehouse(settings)
	if err != nil {
		return err
	}
	defer be.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	builder := schema.NewBuilder(be, schema.WithQualifier(settings.Qualifier))
	sc, err := builder.Build(ctx, queryflow.TablesFor(category, settings.Tables))
	if err != nil {
		return fmt.Errorf("introspect warehouse: %w", err)
	}

	fmt.Println(sc.Render())
	return nil
}
