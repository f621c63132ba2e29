package analyses

import (
	"sort"
	"time"

	"github.com/MattyO101/Legalassist-MPV/internal/analyses/recommendations"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Recommendation is one suggested change to a document.
type Recommendation struct {
	ID            string    `json:"id" bson:"_id"`
	DocumentID    string    `json:"documentId" bson:"documentId"`
	Type          string    `json:"type" bson:"type"`
	Content       string    `json:"content" bson:"content"`
	OriginalText  string    `json:"originalText,omitempty" bson:"originalText,omitempty"`
	SuggestedText string    `json:"suggestedText,omitempty" bson:"suggestedText,omitempty"`
	Severity      string    `json:"severity" bson:"severity"`
	Status        string    `json:"status" bson:"status"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// sortRecommendations orders by severity high to low, then newest first.
func sortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri := recommendations.SeverityRank(recs[i].Severity)
		rj := recommendations.SeverityRank(recs[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
