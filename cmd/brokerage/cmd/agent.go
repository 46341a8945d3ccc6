package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/brokerage/pkg/brokerage"
	"github.com/shunichi-ikebuchi/brokerage/pkg/models"
)

var (
	agentCode  string
	agentName  string
	agentEmail string
	agentPhone string
	agentCap   float64
	agentYear  int
	showYear   int
)

// agentCmd groups agent management commands.
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage agents",
}

var agentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new agent",
	Long: `Register a new active agent with an empty commission ledger.

The salary cap defaults to BROKERAGE_DEFAULT_SALARY_CAP and tracking starts
in the current calendar year unless --year is given.

Example:
  brokerage agent add --code AG-001 --name "Jane Doe" --email jane@example.com
  brokerage agent add --code AG-002 --name "John Roe" --cap 150000`,
	Run: runAgentAdd,
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agents",
	Run:   runAgentList,
}

var agentShowCmd = &cobra.Command{
	Use:   "show CODE",
	Short: "Show an agent and its salary-cap position",
	Args:  cobra.ExactArgs(1),
	Run:   runAgentShow,
}

var agentStatusCmd = &cobra.Command{
	Use:   "status CODE active|inactive",
	Short: "Activate or deactivate an agent",
	Long: `Activate or deactivate an agent. Inactive agents keep their ledger
but cannot be assigned to new transactions.`,
	Args: cobra.ExactArgs(2),
	Run:  runAgentStatus,
}

func init() {
	agentAddCmd.Flags().StringVar(&agentCode, "code", "", "Agent code (required)")
	agentAddCmd.Flags().StringVar(&agentName, "name", "", "Agent name (required)")
	agentAddCmd.Flags().StringVar(&agentEmail, "email", "", "Email address")
	agentAddCmd.Flags().StringVar(&agentPhone, "phone", "", "Phone number")
	agentAddCmd.Flags().Float64Var(&agentCap, "cap", 0, "Annual salary cap (default from configuration)")
	agentAddCmd.Flags().IntVar(&agentYear, "year", 0, "First commission year (default current year)")
	agentAddCmd.MarkFlagRequired("code")
	agentAddCmd.MarkFlagRequired("name")

	agentShowCmd.Flags().IntVar(&showYear, "year", 0, "Evaluate the cap position for this year (default current year)")

	agentCmd.AddCommand(agentAddCmd, agentListCmd, agentShowCmd, agentStatusCmd)
}

func runAgentAdd(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	agent, err := a.service.RegisterAgent(cmd.Context(), brokerage.RegisterAgentRequest{
		Code:      agentCode,
		Name:      agentName,
		Email:     agentEmail,
		Phone:     agentPhone,
		SalaryCap: agentCap,
		Year:      agentYear,
	})
	a.exitOnError(err, "failed to register agent")

	fmt.Printf("Registered agent %s (%s), salary cap %s, tracking %d\n",
		agent.Code, agent.Name, money(agent.SalaryCap), agent.CommissionYear)
}

func runAgentList(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	agents, err := a.service.ListAgents(cmd.Context())
	a.exitOnError(err, "failed to list agents")

	if len(agents) == 0 {
		fmt.Println("No agents registered")
		return
	}

	fmt.Printf("%-12s %-24s %-8s %6s %16s %16s\n", "CODE", "NAME", "STATUS", "YEAR", "YTD", "CAP")
	for _, agent := range agents {
		fmt.Printf("%-12s %-24s %-8s %6d %16s %16s\n",
			agent.Code, truncate(agent.Name, 24), agent.Status, agent.CommissionYear,
			money(agent.YearToDateCommission), money(agent.SalaryCap))
	}
}

func runAgentShow(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	pos, err := a.service.CapStatus(cmd.Context(), args[0], showYear)
	a.exitOnError(err, "failed to get agent")

	agent := pos.Agent
	fmt.Printf("\n=== Agent %s ===\n", agent.Code)
	fmt.Printf("Name:          %s\n", agent.Name)
	if agent.Email != "" {
		fmt.Printf("Email:         %s\n", agent.Email)
	}
	if agent.Phone != "" {
		fmt.Printf("Phone:         %s\n", agent.Phone)
	}
	fmt.Printf("Status:        %s\n", agent.Status)
	fmt.Printf("Stored year:   %d (YTD %s)\n", agent.CommissionYear, money(agent.YearToDateCommission))
	fmt.Printf("Cap year:      %d\n", pos.State.TrackingYear)
	fmt.Printf("YTD:           %s of %s (%s)\n", money(pos.State.YearToDateCommission), money(pos.State.CapThreshold), percent(pos.Utilization))
	fmt.Printf("Remaining:     %s\n", money(pos.Remaining))
	fmt.Printf("Cap status:    %s\n", pos.Status)
	fmt.Println()
}

func runAgentStatus(cmd *cobra.Command, args []string) {
	status := models.AgentStatus(strings.ToUpper(args[1]))

	a := openApp(cmd.Context())
	defer a.closeOrWarn()

	agent, err := a.service.SetAgentStatus(cmd.Context(), args[0], status)
	a.exitOnError(err, "failed to update agent status")

	fmt.Printf("Agent %s is now %s\n", agent.Code, agent.Status)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
