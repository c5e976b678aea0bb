package quiz

// Params defines all configurable parameters for quiz generation
type Params struct {
	// Stage limits; requested stage counts are clamped into [MinStages, MaxStages]
	MinStages int
	MaxStages int

	// Number of answer options per question, including the correct one
	Options int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinStages int
	MaxStages int
	Options   int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinStages: 1,
		MaxStages: 20,
		Options:   4,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinStages > 0 {
		params.MinStages = config.MinStages
	}
	if config.MaxStages >= params.MinStages {
		params.MaxStages = config.MaxStages
	}
	if config.Options > 1 {
		params.Options = config.Options
	}

	return params
}

// ClampStages forces n into [MinStages, MaxStages].
func (p *Params) ClampStages(n int) int {
	if n < p.MinStages {
		return p.MinStages
	}
	if n > p.MaxStages {
		return p.MaxStages
	}
	return n
}
