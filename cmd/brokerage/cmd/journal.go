package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	journalMonth string
	journalYear  int
)

// journalCmd represents the journal command.
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the Beancount commission journal",
	Long: `Show the Beancount journal written for recorded transactions.

With --month, print that month's file. Otherwise list the months of
--year (default current year) that have entries.

Example:
  brokerage journal
  brokerage journal --year 2024
  brokerage journal --month 2024-07`,
	Run: runJournal,
}

func init() {
	journalCmd.Flags().StringVar(&journalMonth, "month", "", "Print the journal for this month (YYYY-MM)")
	journalCmd.Flags().IntVar(&journalYear, "year", 0, "List journal months of this year (default current year)")
}

func runJournal(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	if journalMonth != "" {
		content, found, err := a.journal.Month(journalMonth)
		a.exitOnError(err, "failed to read journal")
		if !found {
			fmt.Printf("No journal entries for %s\n", journalMonth)
			return
		}
		fmt.Print(content)
		return
	}

	year := journalYear
	if year == 0 {
		year = time.Now().Year()
	}
	months, err := a.journal.Months(year)
	a.exitOnError(err, "failed to list journal months")

	if len(months) == 0 {
		fmt.Printf("No journal entries for %d\n", year)
		return
	}
	for _, m := range months {
		fmt.Println(m)
	}
}
