// Package policy loads the brokerage commission policy from YAML.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/brokerage/pkg/commission"
)

// RatesConfig is the YAML form of commission.Rates. Omitted keys keep their defaults.
type RatesConfig struct {
	SaleRate          *float64 `yaml:"sale_rate"`
	RentalFeeRate     *float64 `yaml:"rental_fee_rate"`
	SaleAgentSplit    *float64 `yaml:"sale_agent_split"`
	RentalAgentSplit  *float64 `yaml:"rental_agent_split"`
	CappedAgentSplit  *float64 `yaml:"capped_agent_split"`
	SellingAgentShare *float64 `yaml:"selling_agent_share"`
	CapBonusShare     *float64 `yaml:"cap_bonus_share"`
}

// Accounts are the Beancount accounts used when journaling commissions.
type Accounts struct {
	Receivable    string `yaml:"receivable"`
	CompanyIncome string `yaml:"company_income"`
	AgentPayable  string `yaml:"agent_payable"`
}

// Config represents the complete policy file.
type Config struct {
	Rates      RatesConfig `yaml:"rates"`
	MoneyScale *int32      `yaml:"money_scale"`
	Accounts   Accounts    `yaml:"accounts"`
}

// Policy is a resolved, validated policy.
type Policy struct {
	Rates      commission.Rates
	MoneyScale int32
	Accounts   Accounts
}

// Default returns the built-in policy.
func Default() *Policy {
	return &Policy{
		Rates:      commission.DefaultRates(),
		MoneyScale: commission.DefaultMoneyScale,
		Accounts:   defaultAccounts(),
	}
}

func defaultAccounts() Accounts {
	return Accounts{
		Receivable:    "Assets:Receivable:Commissions",
		CompanyIncome: "Income:Brokerage:Commissions",
		AgentPayable:  "Liabilities:Payable:AgentCommissions",
	}
}

// Load reads a policy file. An empty path returns the default policy.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates policy YAML.
func Parse(data []byte) (*Policy, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p := Default()
	override(&p.Rates.SaleRate, cfg.Rates.SaleRate)
	override(&p.Rates.RentalFeeRate, cfg.Rates.RentalFeeRate)
	override(&p.Rates.SaleAgentSplit, cfg.Rates.SaleAgentSplit)
	override(&p.Rates.RentalAgentSplit, cfg.Rates.RentalAgentSplit)
	override(&p.Rates.CappedAgentSplit, cfg.Rates.CappedAgentSplit)
	override(&p.Rates.SellingAgentShare, cfg.Rates.SellingAgentShare)
	override(&p.Rates.CapBonusShare, cfg.Rates.CapBonusShare)

	if cfg.MoneyScale != nil {
		if *cfg.MoneyScale < 0 || *cfg.MoneyScale > 8 {
			return nil, fmt.Errorf("money_scale must be between 0 and 8, got %d", *cfg.MoneyScale)
		}
		p.MoneyScale = *cfg.MoneyScale
	}

	if cfg.Accounts.Receivable != "" {
		p.Accounts.Receivable = cfg.Accounts.Receivable
	}
	if cfg.Accounts.CompanyIncome != "" {
		p.Accounts.CompanyIncome = cfg.Accounts.CompanyIncome
	}
	if cfg.Accounts.AgentPayable != "" {
		p.Accounts.AgentPayable = cfg.Accounts.AgentPayable
	}

	if err := p.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	return p, nil
}

func override(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
