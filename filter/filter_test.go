package filter

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidae-labs/pdfxref/model"
)

func flateEncode(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestPipelineDecodeFlate(t *testing.T) {
	raw := []byte("hello pdf world, hello pdf world")
	encoded := flateEncode(t, raw)

	pipeline := Pipeline{{Name: Flate}}
	r, err := pipeline.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)

	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, raw, decoded)
}

func TestASCIIHexRoundTrip(t *testing.T) {
	r, err := decodeASCIIHex(bytes.NewReader([]byte("68656c6c6f>")))
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello", string(decoded))
}

func TestASCII85RoundTrip(t *testing.T) {
	// "Man " encodes to "9jqo^" in the canonical Adobe example.
	r, err := decodeASCII85(bytes.NewReader([]byte("9jqo^~>")))
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "Man ", string(decoded))
}

func TestRunLengthDecode(t *testing.T) {
	// 2 literal bytes "ab", then 3 repeats of 'c', then EOD.
	encoded := []byte{1, 'a', 'b', 254, 'c', 0x80}
	r, err := decodeRunLength(bytes.NewReader(encoded))
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "abccc", string(decoded))
}

func TestParseDictSingleFilter(t *testing.T) {
	pipeline, err := ParseDict(model.Name(Flate), nil, nil)
	require.NoError(t, err)
	require.Len(t, pipeline, 1)
	require.Equal(t, Flate, pipeline[0].Name)
}

func TestParseDictArrayOfFilters(t *testing.T) {
	pipeline, err := ParseDict(model.Array{model.Name(ASCIIHex), model.Name(Flate)}, nil, nil)
	require.NoError(t, err)
	require.Len(t, pipeline, 2)
	require.Equal(t, ASCIIHex, pipeline[0].Name)
	require.Equal(t, Flate, pipeline[1].Name)
}
