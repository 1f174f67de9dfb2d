package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/encoding"
)

const header = "Descrição;Montante\nCafé;12,50\nOperação;-3,00\n"

func TestNewUTF8Reader(t *testing.T) {
	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	type testCase struct {
		name        string
		input       []byte
		wantCharset string
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte(header),
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMIsStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, header...),
			wantCharset: encoding.UTF8,
		},
		{
			name:  "SingleByteFallback",
			input: latin1,
		},
		{
			name:        "UTF16LEWithBOM",
			input:       utf16le,
			wantCharset: encoding.UTF16LE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, header, string(got))
			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, r.Charset)
			} else {
				assert.NotEqual(t, encoding.UTF8, r.Charset)
			}
		})
	}
}

func TestNewUTF8Reader_RuneCutAtSniffBoundary(t *testing.T) {
	// 4095 ASCII bytes put the two-byte "ç" across the sniff boundary.
	input := strings.Repeat("a", 4095) + "ção\n"

	r, err := encoding.NewUTF8Reader(strings.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, input, string(got))
	assert.Equal(t, encoding.UTF8, r.Charset)
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(strings.NewReader(""))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
