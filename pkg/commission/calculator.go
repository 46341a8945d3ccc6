package commission

// Result is the outcome of Calculator.Process.
type Result struct {
	Variant Variant

	// Exact is the unrounded engine output.
	Exact Breakdown
	// Breakdown is Exact settled to the money scale. This is what gets persisted
	// and what the ledgers are credited with.
	Breakdown Breakdown

	// Primary and Secondary are the rolled-over, credited cap states to persist.
	// Secondary is nil unless the transaction is a dual-agent sale.
	Primary   AgentCapState
	Secondary *AgentCapState

	// PrimaryRolled and SecondaryRolled report whether a year rollover reset the ledger.
	PrimaryRolled   bool
	SecondaryRolled bool
}

// CrossedCap reports which agents moved from below to at-or-above their cap with this transaction.
func (r Result) CrossedCap() (primary, secondary bool) {
	primary = !r.Breakdown.PrimaryAtCap && r.Primary.AtCap()
	if r.Secondary != nil {
		secondary = !r.Breakdown.SecondaryAtCap && r.Secondary.AtCap()
	}
	return primary, secondary
}

// Calculator runs the full pipeline: classify, roll over, compute, settle, apply.
type Calculator struct {
	engine *Engine
	scale  int32
}

// NewCalculator creates a Calculator that settles money to scale decimal digits.
func NewCalculator(engine *Engine, scale int32) *Calculator {
	return &Calculator{engine: engine, scale: scale}
}

// Engine returns the underlying engine.
func (c *Calculator) Engine() *Engine {
	return c.engine
}

// Process computes the commission for in as of currentYear. All validation
// happens before any arithmetic; on error nothing is returned to apply.
func (c *Calculator) Process(in TransactionInput, currentYear int) (Result, error) {
	variant, err := Classify(in)
	if err != nil {
		return Result{}, err
	}

	if err := in.Primary.Validate(); err != nil {
		return Result{}, err
	}
	listing := in.listingAgent()
	if listing != nil {
		if err := listing.Validate(); err != nil {
			return Result{}, err
		}
	}

	res := Result{Variant: variant}

	primary := RollIfNeeded(*in.Primary, currentYear)
	res.PrimaryRolled = NeedsRollover(*in.Primary, currentYear)

	var secondary *AgentCapState
	if variant == VariantDualAgentSale {
		rolled := RollIfNeeded(*listing, currentYear)
		secondary = &rolled
		res.SecondaryRolled = NeedsRollover(*listing, currentYear)
	}

	exact, err := c.engine.Calculate(variant, in.Amount, primary, secondary)
	if err != nil {
		return Result{}, err
	}
	res.Exact = exact
	res.Breakdown = Settle(exact, c.scale)
	res.Primary, res.Secondary = ApplyBreakdown(res.Breakdown, primary, secondary)

	return res, nil
}
