package documents

import "time"

const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document is an uploaded file owned by a user. Filename is the object
// store key, never a client-supplied path.
type Document struct {
	ID               string     `json:"id" bson:"_id"`
	UserID           string     `json:"userId" bson:"userId"`
	Title            string     `json:"title" bson:"title"`
	OriginalFilename string     `json:"originalFilename" bson:"originalFilename"`
	Filename         string     `json:"filename" bson:"filename"`
	FileType         string     `json:"fileType" bson:"fileType"`
	FileSize         int64      `json:"fileSize" bson:"fileSize"`
	MimeType         string     `json:"mimeType" bson:"mimeType"`
	Status           string     `json:"status" bson:"status"`
	AnalyzedAt       *time.Time `json:"analyzedAt,omitempty" bson:"analyzedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" bson:"updatedAt"`
}
