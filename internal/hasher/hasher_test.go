package hasher

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func TestSumSmallInputMatchesPlainDigest(t *testing.T) {
	content := []byte("hello evercas")

	got, err := Sum("blake3", bytes.NewReader(content), 4)
	require.NoError(t, err)

	h := blake3.New()
	h.Write(content)
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), got)
}

func TestSumEmptyInput(t *testing.T) {
	got, err := Sum("blake3", bytes.NewReader(nil), 4)
	require.NoError(t, err)

	h := blake3.New()
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), got)
}

func TestSumIndependentOfWorkerCount(t *testing.T) {
	// Spans three chunks so the tree path and worker pool are exercised.
	content := bytes.Repeat([]byte("0123456789abcdef"), (2*ChunkSize+512)/16)

	want, err := Sum("blake3", bytes.NewReader(content), 1)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		got, err := Sum("blake3", bytes.NewReader(content), workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestSumMultiChunkDiffersFromPlain(t *testing.T) {
	content := bytes.Repeat([]byte{0xab}, ChunkSize+1)

	got, err := Sum("blake3", bytes.NewReader(content), 4)
	require.NoError(t, err)

	h := blake3.New()
	h.Write(content)
	assert.NotEqual(t, hex.EncodeToString(h.Sum(nil)), got)
}

func TestSumUnknownAlgorithm(t *testing.T) {
	_, err := Sum("md5", bytes.NewReader([]byte("x")), 1)
	assert.Error(t, err)
}

func TestTeeSumCopiesAllBytes(t *testing.T) {
	content := bytes.Repeat([]byte("abc"), ChunkSize/3+100)
	var out bytes.Buffer

	teed, err := TeeSum("sha256", bytes.NewReader(content), &out, 4)
	require.NoError(t, err)
	assert.Equal(t, content, out.Bytes())

	plain, err := Sum("sha256", bytes.NewReader(content), 4)
	require.NoError(t, err)
	assert.Equal(t, plain, teed)
}

func TestHexLength(t *testing.T) {
	for algo, want := range map[string]int{"blake3": 64, "sha256": 64, "sha512": 128} {
		got, err := HexLength(algo)
		require.NoError(t, err)
		assert.Equal(t, want, got, algo)
	}

	_, err := HexLength("crc32")
	assert.Error(t, err)
}
