package recommendations

import (
	"math/rand/v2"
	"strings"
)

const (
	// MinRecommendations is the count below which Fallbacks are appended.
	MinRecommendations = 3
	// randomInclusion is the threshold above which a rule fires without a match.
	randomInclusion = 0.4
)

// Engine turns document text into recommendation drafts. A rule fires when
// its pattern matches or when Rand returns more than 0.4, so results are not
// deterministic unless Rand is fixed.
type Engine struct {
	Rules     []Rule
	Fallbacks []Draft
	Rand      func() float64
}

// NewEngine returns an engine over the default catalogue.
func NewEngine() *Engine {
	return &Engine{Rules: DefaultRules, Fallbacks: Fallbacks, Rand: rand.Float64}
}

// Generate returns drafts in rule order, followed by every fallback when
// fewer than MinRecommendations rules fired.
func (e *Engine) Generate(text string) []Draft {
	random := e.Rand
	if random == nil {
		random = rand.Float64
	}
	out := make([]Draft, 0, len(e.Rules)+len(e.Fallbacks))
	for _, rule := range e.Rules {
		if rule.Pattern.MatchString(text) || random() > randomInclusion {
			out = append(out, rule.Draft)
		}
	}
	if len(out) < MinRecommendations {
		out = append(out, e.Fallbacks...)
	}
	return out
}

// SeverityRank orders severities high > medium > low. Unknown values rank lowest.
func SeverityRank(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}
