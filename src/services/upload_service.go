// src/services/upload_service.go
package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/username/bankconv/src/converter"
	"github.com/username/bankconv/src/logger"
	"github.com/username/bankconv/src/model"
	"github.com/username/bankconv/src/models"
	"github.com/username/bankconv/src/parsers"
	"github.com/username/bankconv/src/security/validation"
)

type requestIDKey struct{}

// WithRequestID stores the request id the audit row is tagged with.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id set by WithRequestID, or "" when there is none.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type uploadServiceImpl struct {
	converter *converter.Converter
	audit     AuditStore
}

// NewUploadService builds the service. audit may be nil, which disables the audit log.
func NewUploadService(conv *converter.Converter, audit AuditStore) UploadService {
	return &uploadServiceImpl{
		converter: conv,
		audit:     audit,
	}
}

func (s *uploadServiceImpl) Profile() models.Profile {
	return s.converter.Profile()
}

// ProcessUpload validates the body against its extension, converts it and records the attempt.
// Audit failures are logged and never fail the conversion.
func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, fileReader io.Reader, filename string) (*UploadResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	if _, err := parsers.ForFilename(filename); err != nil {
		log.Warn("Upload rejected by format dispatcher", "filename", filename, "error", err)
		s.record(ctx, model.Conversion{Filename: filename, Status: model.StatusFailed, Error: err.Error()}, start)
		return nil, err
	}

	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	if err := validation.ValidateFileContent(validation.Extension(filename), data); err != nil {
		log.Warn("Upload content validation failed", "filename", filename, "error", err)
		s.record(ctx, model.Conversion{Filename: filename, Status: model.StatusFailed, Error: err.Error()}, start)
		return nil, err
	}

	out, summary, err := s.converter.ConvertWithSummary(ctx, bytes.NewReader(data), filename)
	if err != nil {
		log.Warn("Conversion failed", "filename", filename, "error", err)
		s.record(ctx, model.Conversion{Filename: filename, Status: model.StatusFailed, Error: err.Error()}, start)
		return nil, err
	}

	logger.InfoFromContext(ctx, "Conversion succeeded", "filename", filename, "format", summary.Format, "rows", summary.Rows)
	s.record(ctx, model.Conversion{
		Filename:  filename,
		Format:    summary.Format,
		Rows:      summary.Rows,
		NetAmount: summary.Net.StringFixed(2),
		Status:    model.StatusSuccess,
	}, start)

	return &UploadResult{
		Data:     out,
		Filename: validation.ConvertedFilename(filename),
		Summary:  summary,
	}, nil
}

func (s *uploadServiceImpl) record(ctx context.Context, c model.Conversion, start time.Time) {
	if s.audit == nil {
		return
	}
	c.RequestID = RequestIDFromContext(ctx)
	c.Profile = s.converter.Profile().Name
	c.DurationMS = time.Since(start).Milliseconds()
	if c.Format == "" {
		c.Format = validation.Extension(c.Filename)
	}
	if err := s.audit.Record(ctx, c); err != nil {
		logger.FromContext(ctx).Error("Failed to record conversion audit row", "filename", c.Filename, "error", err)
	}
}

func (s *uploadServiceImpl) RecentConversions(ctx context.Context, limit int) ([]model.Conversion, error) {
	if s.audit == nil {
		return nil, ErrAuditDisabled
	}
	return s.audit.Recent(ctx, limit)
}

// sqlAuditStore writes audit rows to the conversions table.
type sqlAuditStore struct {
	db *sql.DB
}

// NewSQLAuditStore returns an AuditStore backed by db.
func NewSQLAuditStore(db *sql.DB) AuditStore {
	return &sqlAuditStore{db: db}
}

func (a *sqlAuditStore) Record(ctx context.Context, c model.Conversion) error {
	id, err := model.InsertConversion(a.db, c)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("Conversion audit row stored", "id", id)
	return nil
}

func (a *sqlAuditStore) Recent(_ context.Context, limit int) ([]model.Conversion, error) {
	return model.ListRecentConversions(a.db, limit)
}
