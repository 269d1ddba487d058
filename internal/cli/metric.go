package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cortexa-labs/cortexa/internal/service"
)

// MetricCmd creates the metric command.
func MetricCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metric <name> [values]",
		Short: "Invoke a registered metric directly",
		Long: `Invokes a metric from the registry with a comma-separated argument
list, e.g.:

  cortexa metric nrr "2500000, 2000000"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawArgs := ""
			if len(args) > 1 {
				rawArgs = args[1]
			}
			return runMetric(args[0], rawArgs)
		},
	}

	cmd.AddCommand(metricListCmd())

	return cmd
}

func metricListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := service.NewRegistry()
			fmt.Println(service.FormatDescriptors(registry.Descriptors()))
			return nil
		},
	}
}

func runMetric(name, rawArgs string) error {
	registry := service.NewRegistry()
	result, err := registry.Invoke(name, rawArgs)
	if err != nil {
		return err
	}
	fmt.Println(result.Formatted)
	return nil
}
