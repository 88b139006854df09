package search

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/dgallion1/gridkit/internal/record"
)

// Artifact is the persisted output of an indexing run.
type Artifact struct {
	Corpus []record.Record `json:"corpus"`
	Index  *Index          `json:"index"`
}

// NewArtifact indexes corpus.
func NewArtifact(corpus []record.Record) *Artifact {
	if corpus == nil {
		corpus = []record.Record{}
	}
	return &Artifact{Corpus: corpus, Index: Build(corpus)}
}

// Compressed reports whether path names a zstd-compressed artifact.
func Compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Encode writes a as JSON, zstd-compressed when compress is set.
func (a *Artifact) Encode(w io.Writer, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(a)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(a); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DecodeArtifact reads an artifact written by Encode.
func DecodeArtifact(r io.Reader, compressed bool) (*Artifact, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	if a.Index == nil {
		return nil, fmt.Errorf("decoding artifact: missing index")
	}
	if a.Index.DocCount != len(a.Corpus) {
		return nil, fmt.Errorf("decoding artifact: index covers %d documents, corpus has %d", a.Index.DocCount, len(a.Corpus))
	}
	return &a, nil
}

// WriteArtifact writes a to path through a temporary file so readers never
// see a partial artifact.
func WriteArtifact(path string, a *Artifact) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := a.Encode(bw, Compressed(path)); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding artifact: %w", err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("installing artifact: %w", err)
	}
	return nil
}

// ReadArtifact loads the artifact at path.
func ReadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()
	return DecodeArtifact(bufio.NewReader(f), Compressed(path))
}
