package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/queryflow/pkg/queryflow/sqlcheck"
)

var adviseCmd = &cobra.Command{
	Use:   "advise <sql>",
	Short: "Run the static SQL checks without executing",
	Long: `Advise runs the read-only, qualification and join checks that gate
generated SQL, then prints any advisory suggestions. The warehouse is
never touched.

Examples:
  queryflow advise "SELECT o.status FROM main.orders AS o LIMIT 10"
  queryflow advise "SELECT * FROM main.orders"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdvise,
}

func runAdvise(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	sql := strings.Join(args, " ")

	validator := sqlcheck.NewValidator(settings.Qualifier, settings.Tables,
		sqlcheck.WithMaxJoins(settings.MaxJoins))
	if err := validator.Validate(sql); err != nil {
		return fmt.Errorf("rejected: %w", err)
	}

	fmt.Printf("%sok:%s statement passes all checks\n", colorGreen, colorReset)
	for _, s := range sqlcheck.Advise(sql) {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}
