package attachment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestEncode(t *testing.T) {
	att, err := Encode(strings.NewReader("%PDF-1.7 ..."), TypePDF, "tor-acara.pdf")
	require.NoError(t, err)

	assert.Equal(t, TypePDF, att.MediaType)
	assert.Equal(t, "tor-acara.pdf", att.Filename)
	assert.Equal(t, []byte("%PDF-1.7 ..."), att.Data)
}

func TestEncode_UnsupportedType(t *testing.T) {
	att, err := Encode(strings.NewReader("PK..."), "application/zip", "arsip.zip")
	assert.Nil(t, att)

	var unsupported *UnsupportedTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "application/zip", unsupported.MediaType)
}

func TestEncode_UnsupportedTypeSkipsRead(t *testing.T) {
	// The gate must fire before any bytes are read.
	_, err := Encode(failingReader{}, "video/mp4", "klip.mp4")

	var unsupported *UnsupportedTypeError
	assert.True(t, errors.As(err, &unsupported))
}

func TestEncode_ReadFailure(t *testing.T) {
	_, err := Encode(failingReader{}, TypeText, "catatan.txt")

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "catatan.txt", encErr.Filename)
}

func TestEncode_EmptyPayload(t *testing.T) {
	_, err := Encode(strings.NewReader(""), TypeText, "kosong.txt")

	var encErr *EncodingError
	assert.True(t, errors.As(err, &encErr))
}

func TestAllowed(t *testing.T) {
	for _, mt := range []string{TypePDF, TypeDOCX, TypeText, TypePNG, TypeJPEG} {
		assert.True(t, Allowed(mt), mt)
	}
	assert.False(t, Allowed("application/zip"))
	assert.False(t, Allowed(""))
}
