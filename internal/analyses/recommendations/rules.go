package recommendations

import "regexp"

func keywords(alternation string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternation + `)\b`)
}

// DefaultRules is the fixed clause catalogue checked against every document.
var DefaultRules = []Rule{
	{
		Name:    "obligations",
		Pattern: keywords(`obligations|duties|responsibilities`),
		Draft: Draft{
			Type:     TypeInformation,
			Content:  "Clearly define all obligations and responsibilities",
			Severity: SeverityMedium,
		},
	},
	{
		Name:    "termination",
		Pattern: keywords(`terminate|termination|cancel|cancellation`),
		Draft: Draft{
			Type:          TypeAddition,
			Content:       "Add a clear termination clause",
			SuggestedText: "Either party may terminate this agreement with 30 days written notice.",
			Severity:      SeverityHigh,
		},
	},
	{
		Name:    "payment",
		Pattern: keywords(`pay|payment|compensation|fee`),
		Draft: Draft{
			Type:          TypeModification,
			Content:       "Clarify payment terms",
			OriginalText:  "Payment will be made upon completion.",
			SuggestedText: "Payment will be made within 30 days of invoice receipt.",
			Severity:      SeverityHigh,
		},
	},
	{
		Name:    "confidentiality",
		Pattern: keywords(`confiden|secret|proprietary`),
		Draft: Draft{
			Type:     TypeInformation,
			Content:  "Review confidentiality provisions",
			Severity: SeverityMedium,
		},
	},
	{
		Name:    "liability",
		Pattern: keywords(`liable|liability|indemnify|indemnification`),
		Draft: Draft{
			Type:          TypeModification,
			Content:       "Consider limiting liability",
			OriginalText:  "The Company shall be liable for all damages.",
			SuggestedText: "The Company's liability shall be limited to the total amount paid under this agreement.",
			Severity:      SeverityHigh,
		},
	},
	{
		Name:    "governing_law",
		Pattern: keywords(`law|governing|jurisdiction`),
		Draft: Draft{
			Type:          TypeAddition,
			Content:       "Add governing law clause",
			SuggestedText: "This agreement shall be governed by the laws of [State/Country].",
			Severity:      SeverityMedium,
		},
	},
	{
		Name:    "dispute_resolution",
		Pattern: keywords(`dispute|arbitration|mediation`),
		Draft: Draft{
			Type:     TypeInformation,
			Content:  "Consider adding dispute resolution mechanism",
			Severity: SeverityLow,
		},
	},
	{
		Name:    "warranty",
		Pattern: keywords(`warranty|guarantee|assurance`),
		Draft: Draft{
			Type:          TypeModification,
			Content:       "Clarify warranty provisions",
			OriginalText:  "Full warranty provided.",
			SuggestedText: "Limited warranty for 90 days covering defects in materials and workmanship.",
			Severity:      SeverityMedium,
		},
	},
}

// Fallbacks are appended when the rules yield too few recommendations.
var Fallbacks = []Draft{
	{
		Type:          TypeAddition,
		Content:       "Add a force majeure clause",
		SuggestedText: "Neither party shall be liable for failure to perform due to events beyond their reasonable control.",
		Severity:      SeverityMedium,
	},
	{
		Type:          TypeModification,
		Content:       "Improve clarity of intellectual property rights",
		OriginalText:  "All intellectual property belongs to the company.",
		SuggestedText: "All intellectual property created during the performance of this agreement shall belong to the Company, while pre-existing intellectual property shall remain with its original owner.",
		Severity:      SeverityHigh,
	},
	{
		Type:     TypeInformation,
		Content:  "Consider adding a non-solicitation clause",
		Severity: SeverityLow,
	},
}
