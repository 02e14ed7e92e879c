package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionAndAllowedFile(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		allowed bool
	}{
		{"estratto.csv", "csv", true},
		{"Movimenti.XLSX", "xlsx", true},
		{"archive.tar.csv", "csv", true},
		{"notes.txt", "txt", false},
		{"noextension", "", false},
		{"dir.v2/file", "", false},
		{`C:\Users\me\export.csv`, "csv", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ext, Extension(tt.name))
			assert.Equal(t, tt.allowed, AllowedFile(tt.name))
		})
	}
}

func TestValidateFileContent(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		data    []byte
		wantErr bool
	}{
		{"csv text", "csv", []byte("Data,Operazione\n"), false},
		{"csv with accents", "csv", []byte("Causale,Società\n"), false},
		{"csv empty", "csv", nil, true},
		{"csv with nul", "csv", []byte("a,b\x00c"), true},
		{"csv latin1", "csv", []byte{'a', 0xE0, 'b'}, true},
		{"xlsx zip", "xlsx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14}, false},
		{"xlsx text", "xlsx", []byte("Data,Operazione"), true},
		{"unknown ext", "txt", []byte("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileContent(tt.ext, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrContentMismatch))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateFileContentMultibyteAtWindowEdge(t *testing.T) {
	data := []byte(strings.Repeat("a", 4095) + "è" + "\n")
	assert.NoError(t, ValidateFileContent("csv", data))
}

func TestConvertedFilename(t *testing.T) {
	assert.Equal(t, "estratto_converted.csv", ConvertedFilename("estratto.csv"))
	assert.Equal(t, "movimenti.2024_converted.csv", ConvertedFilename("movimenti.2024.xlsx"))
	assert.Equal(t, "export_converted.csv", ConvertedFilename("/tmp/export.csv"))
	assert.Equal(t, "a_b_converted.csv", ConvertedFilename("a\"b.csv"))
	assert.Equal(t, "unnamed_converted.csv", ConvertedFilename(".csv"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Error processing file: bad", SanitizeText("Error processing file: <b>bad</b>"))
	assert.Equal(t, "ab", SanitizeText("a\x07b"))
}

type sampleStruct struct {
	Name  string `json:"name" validate:"required,noBlank"`
	Label string `json:"label" validate:"required,noBlank"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleStruct{Name: "intesa", Label: "Data"}))

	err := ValidateStruct(sampleStruct{Name: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Contains(t, err.Error(), "sampleStruct.name must not be blank")
	assert.Contains(t, err.Error(), "sampleStruct.label is required")

	var fe FieldError
	assert.True(t, errors.As(err, &fe))
}

func TestValidateStructInvalidInput(t *testing.T) {
	err := ValidateStruct(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
}
