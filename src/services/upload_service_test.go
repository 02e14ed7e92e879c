package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/bankconv/src/converter"
	"github.com/username/bankconv/src/database"
	"github.com/username/bankconv/src/logger"
	"github.com/username/bankconv/src/mapper"
	"github.com/username/bankconv/src/model"
	"github.com/username/bankconv/src/models"
	"github.com/username/bankconv/src/parsers"
	"github.com/username/bankconv/src/security/validation"
)

const sampleCSV = "Conto,123\n" +
	"Data,Operazione,Dettagli,Importo\n" +
	"15/01/2024,Grocery Store,Supermarket purchase,-45.30\n" +
	"16/01/2024,Bar,Caffè,\"-1,20\"\n"

type memAuditStore struct {
	mu   sync.Mutex
	rows []model.Conversion
	err  error
}

func (m *memAuditStore) Record(_ context.Context, c model.Conversion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, c)
	return nil
}

func (m *memAuditStore) Recent(_ context.Context, limit int) ([]model.Conversion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Conversion(nil), m.rows...), nil
}

func newService(t *testing.T, audit AuditStore) UploadService {
	t.Helper()
	conv, err := converter.New(models.IntesaSanPaolo())
	require.NoError(t, err)
	return NewUploadService(conv, audit)
}

func TestProcessUploadSuccess(t *testing.T) {
	audit := &memAuditStore{}
	svc := newService(t, audit)
	ctx := WithRequestID(context.Background(), "req-42")

	res, err := svc.ProcessUpload(ctx, strings.NewReader(sampleCSV), "gennaio 2024.csv")
	require.NoError(t, err)
	assert.Equal(t, "gennaio 2024_converted.csv", res.Filename)
	assert.Equal(t, 2, res.Summary.Rows)
	assert.True(t, strings.HasPrefix(string(res.Data), "Account,Date,Payee,Notes,Category,Amount,Split_Amount,Cleared\r\n"))

	require.Len(t, audit.rows, 1)
	row := audit.rows[0]
	assert.Equal(t, "req-42", row.RequestID)
	assert.Equal(t, "intesa", row.Profile)
	assert.Equal(t, model.StatusSuccess, row.Status)
	assert.Equal(t, "csv", row.Format)
	assert.Equal(t, "-46.50", row.NetAmount)
	assert.Equal(t, "Intesa SanPaolo", svc.Profile().AccountName)
}

func TestProcessUploadLogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewJSONHandler(&buf, nil)).With("requestID", "req-7")
	ctx := WithRequestID(logger.ToContext(context.Background(), reqLogger), "req-7")
	assert.Equal(t, "req-7", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))

	_, err := newService(t, nil).ProcessUpload(ctx, strings.NewReader(sampleCSV), "gennaio.csv")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Conversion succeeded"`)
	assert.Contains(t, out, `"requestID":"req-7"`)
	assert.Contains(t, out, `"rows":2`)
}

func TestProcessUploadFailures(t *testing.T) {
	audit := &memAuditStore{}
	svc := newService(t, audit)
	ctx := context.Background()

	_, err := svc.ProcessUpload(ctx, strings.NewReader(sampleCSV), "notes.txt")
	assert.ErrorIs(t, err, parsers.ErrUnsupportedExtension)
	assert.Contains(t, err.Error(), "txt")

	_, err = svc.ProcessUpload(ctx, strings.NewReader("just,some\ncsv,text\n"), "x.csv")
	assert.ErrorIs(t, err, mapper.ErrHeaderNotFound)

	_, err = svc.ProcessUpload(ctx, strings.NewReader("Data,Operazione,Dettagli\x00"), "x.csv")
	assert.ErrorIs(t, err, validation.ErrContentMismatch)

	_, err = svc.ProcessUpload(ctx, strings.NewReader(sampleCSV), "x.xlsx")
	assert.ErrorIs(t, err, validation.ErrContentMismatch)
	assert.True(t, converter.IsLabeled(err))

	require.Len(t, audit.rows, 4)
	for _, row := range audit.rows {
		assert.Equal(t, model.StatusFailed, row.Status)
		assert.NotEmpty(t, row.Error)
	}
	assert.Equal(t, "txt", audit.rows[0].Format)
}

func TestAuditFailureDoesNotFailConversion(t *testing.T) {
	svc := newService(t, &memAuditStore{err: errors.New("disk full")})
	res, err := svc.ProcessUpload(context.Background(), strings.NewReader(sampleCSV), "a.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Data)
}

func TestRecentConversionsDisabled(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.ProcessUpload(context.Background(), strings.NewReader(sampleCSV), "a.csv")
	require.NoError(t, err)

	_, err = svc.RecentConversions(context.Background(), 10)
	assert.ErrorIs(t, err, ErrAuditDisabled)
}

func TestSQLAuditStore(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))

	svc := newService(t, NewSQLAuditStore(db))
	ctx := WithRequestID(context.Background(), "req-1")
	_, err = svc.ProcessUpload(ctx, strings.NewReader(sampleCSV), "a.csv")
	require.NoError(t, err)
	_, err = svc.ProcessUpload(ctx, strings.NewReader("nothing"), "b.csv")
	require.Error(t, err)

	recent, err := svc.RecentConversions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	byName := map[string]model.Conversion{}
	for _, c := range recent {
		byName[c.Filename] = c
	}
	assert.Equal(t, model.StatusSuccess, byName["a.csv"].Status)
	assert.Equal(t, 2, byName["a.csv"].Rows)
	assert.Equal(t, model.StatusFailed, byName["b.csv"].Status)
	assert.Contains(t, byName["b.csv"].Error, "could not find header row")
}
