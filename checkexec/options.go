package checkexec

// CheckOptions configures one analysis call. Zero values fall back to the
// defaults, so callers can set only what they care about.
type CheckOptions struct {
	// Resource ceilings. Usefulness checking can case-split exponentially
	// for deeply nested tuples of sums, so callers needing bounded latency
	// cap the work and treat excess as ErrAnalysisTooComplex rather than
	// waiting indefinitely.
	MaxArms    int // Max arms in one match expression (default: 512)
	MaxDepth   int // Max specialization recursion depth (default: 64)
	NodeBudget int // Max usefulness calls across the whole analysis (default: 200000)

	// MaxWitnesses bounds how many non-exhaustiveness counterexamples are
	// synthesized. Witnesses beyond the cap are cut, never silently merged.
	MaxWitnesses int // default: 8

	// Logging configuration
	LogLevel        string // "error", "warn", "info", "debug" (default: "warn")
	TimestampLayout string // strftime layout for log timestamps (default: "%Y-%m-%dT%H:%M:%S%z")
	Logger          Logger // overrides LogLevel when set
}

// DefaultOptions returns the default configuration for analysis.
func DefaultOptions() CheckOptions {
	return CheckOptions{
		MaxArms:         512,
		MaxDepth:        64,
		NodeBudget:      200000,
		MaxWitnesses:    8,
		LogLevel:        "warn",
		TimestampLayout: "%Y-%m-%dT%H:%M:%S%z",
	}
}

// withDefaults fills unset fields from DefaultOptions.
func (o CheckOptions) withDefaults() CheckOptions {
	d := DefaultOptions()
	if o.MaxArms <= 0 {
		o.MaxArms = d.MaxArms
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.NodeBudget <= 0 {
		o.NodeBudget = d.NodeBudget
	}
	if o.MaxWitnesses <= 0 {
		o.MaxWitnesses = d.MaxWitnesses
	}
	if o.LogLevel == "" {
		o.LogLevel = d.LogLevel
	}
	if o.TimestampLayout == "" {
		o.TimestampLayout = d.TimestampLayout
	}
	return o
}
