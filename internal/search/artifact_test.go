package search

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifact_RoundTrip(t *testing.T) {
	for _, name := range []string{"search.json", "search.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			require.NoError(t, WriteArtifact(path, NewArtifact(testCorpus())))

			a, err := ReadArtifact(path)
			require.NoError(t, err)
			assert.Equal(t, testCorpus(), a.Corpus)
			assert.Equal(t, a.Index.TermCount(), Build(testCorpus()).TermCount())
			assert.Equal(t, []int{1, 0}, docs(a.Index.Search("colum", 10)))
		})
	}
}

func TestArtifact_CompressedIsZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.json.zst")
	require.NoError(t, WriteArtifact(path, NewArtifact(testCorpus())))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])
}

func TestArtifact_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewArtifact(testCorpus()[:1]).Encode(&buf, false))
	assert.Contains(t, buf.String(), `"corpus":[{"url":"/grid","lvl0":"Data Grid"`)
	assert.Contains(t, buf.String(), `"grid":[{"doc":0,"fields":{"lvl0":[[5,4]]}}]`)
}

func TestDecodeArtifact_Rejects(t *testing.T) {
	_, err := DecodeArtifact(bytes.NewBufferString(`{"corpus":[]}`), false)
	assert.ErrorContains(t, err, "missing index")

	_, err = DecodeArtifact(bytes.NewBufferString(`{"corpus":[{"text":"x"}],"index":{"docCount":2}}`), false)
	assert.ErrorContains(t, err, "corpus has 1")

	_, err = DecodeArtifact(bytes.NewBufferString(`not json`), false)
	assert.Error(t, err)
}

func TestReadArtifact_Missing(t *testing.T) {
	_, err := ReadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
