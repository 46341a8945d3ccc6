package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
)

var (
	capsNear float64
	capsYear int
)

// capsCmd represents the caps command.
var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "List agents at or near their salary cap",
	Long: `List active agents that have reached their salary cap for the year.
With --near, list agents that have used at least that percentage of it.

Example:
  brokerage caps
  brokerage caps --near 80 --year 2024`,
	Run: runCaps,
}

func init() {
	capsCmd.Flags().Float64Var(&capsNear, "near", 0, "Utilization threshold in percent")
	capsCmd.Flags().IntVar(&capsYear, "year", 0, "Commission year (default current year)")
}

func runCaps(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	var (
		positions []brokerage.AgentCap
		err       error
	)
	if cmd.Flags().Changed("near") {
		positions, err = a.service.AgentsNearCap(cmd.Context(), capsNear, capsYear)
	} else {
		positions, err = a.service.AgentsAtCap(cmd.Context(), capsYear)
	}
	a.exitOnError(err, "failed to query salary caps")

	if len(positions) == 0 {
		fmt.Println("No matching agents")
		return
	}

	fmt.Printf("%-12s %-24s %16s %16s %16s %7s\n", "CODE", "NAME", "YTD", "CAP", "REMAINING", "USED")
	for _, p := range positions {
		fmt.Printf("%-12s %-24s %16s %16s %16s %7s\n",
			p.Agent.Code, truncate(p.Agent.Name, 24),
			money(p.State.YearToDateCommission), money(p.State.CapThreshold),
			money(p.Remaining), percent(p.Utilization))
	}
}
