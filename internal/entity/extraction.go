package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/mgaillard/scandoc/constants"
)

// Extraction is one persisted document-processing outcome.
type Extraction struct {
	ID           uuid.UUID           `json:"id"`
	FileName     string              `json:"file_name"`
	SourcePath   string              `json:"source_path"`
	Format       string              `json:"format"`
	Status       constants.JobStatus `json:"status"`
	Title        string              `json:"title,omitempty"`
	Reference    string              `json:"reference,omitempty"`
	Description  string              `json:"description,omitempty"`
	Price        string              `json:"price,omitempty"`
	Quantity     string              `json:"quantity,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Confidence   int                 `json:"confidence"`
	ProcessingMs int64               `json:"processing_ms"`
	Message      string              `json:"message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewExtraction flattens a DocumentResult into a storable row.
func NewExtraction(res *DocumentResult, fileName, sourcePath, format string) *Extraction {
	status := constants.JobStatusDone
	if !res.Success {
		status = constants.JobStatusFailed
	}
	value := func(field string) string {
		if ef, ok := res.Data[field]; ok {
			return ef.Value
		}
		return ""
	}
	return &Extraction{
		ID:           uuid.New(),
		FileName:     fileName,
		SourcePath:   sourcePath,
		Format:       format,
		Status:       status,
		Title:        value("title"),
		Reference:    value("reference"),
		Description:  value("description"),
		Price:        value("price"),
		Quantity:     value("quantity"),
		Notes:        value("notes"),
		Confidence:   res.Confidence,
		ProcessingMs: res.ProcessingTimeMs,
		Message:      res.Message,
		CreatedAt:    time.Now().UTC(),
	}
}
