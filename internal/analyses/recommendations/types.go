package recommendations

import "regexp"

const (
	TypeAddition     = "addition"
	TypeDeletion     = "deletion"
	TypeModification = "modification"
	TypeInformation  = "information"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Draft is a recommendation before it is attached to a document.
type Draft struct {
	Type          string
	Content       string
	OriginalText  string
	SuggestedText string
	Severity      string
}

// Rule produces its draft when Pattern matches the document text.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Draft   Draft
}
