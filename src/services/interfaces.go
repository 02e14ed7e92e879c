// src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/bankconv/src/converter"
	"github.com/username/bankconv/src/model"
	"github.com/username/bankconv/src/models"
)

// UploadResult is the outcome of a single ProcessUpload call.
type UploadResult struct {
	// Data is the rendered budgeting-tool CSV.
	Data []byte `json:"-"`
	// Filename is the suggested download name.
	Filename string            `json:"filename"`
	Summary  converter.Summary `json:"summary"`
}

// Define common service errors
var (
	ErrAuditDisabled = errors.New("conversion audit log is disabled")
	ErrReadFailed    = errors.New("failed to read uploaded file")
)

// UploadService runs uploaded bank exports through the converter.
type UploadService interface {
	ProcessUpload(ctx context.Context, fileReader io.Reader, filename string) (*UploadResult, error)
	RecentConversions(ctx context.Context, limit int) ([]model.Conversion, error)
	Profile() models.Profile
}

// AuditStore persists one row per conversion attempt.
type AuditStore interface {
	Record(ctx context.Context, c model.Conversion) error
	Recent(ctx context.Context, limit int) ([]model.Conversion, error)
}
