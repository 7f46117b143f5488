package passage

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typetest/internal/generator"
)

func TestDefaultCorpus(t *testing.T) {
	c := DefaultCorpus(rand.New(rand.NewSource(1)))
	passages := c.Passages()
	require.NotEmpty(t, passages)
	for _, p := range passages {
		assert.False(t, strings.HasPrefix(p, "#"), "comment leaked into corpus: %q", p)
	}
	assert.Contains(t, passages, "The quick brown fox jumps over the lazy dog.")
	assert.Contains(t, passages, c.Next())
}

func TestCorpusCoversAllPassages(t *testing.T) {
	c, err := NewCorpus([]string{"a", "b", "c"}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		seen[c.Next()]++
	}
	assert.Len(t, seen, 3)
	for p, n := range seen {
		assert.Greater(t, n, 50, "passage %q drawn too rarely", p)
	}
}

func TestNewCorpusEmpty(t *testing.T) {
	_, err := NewCorpus(nil, nil)
	assert.Error(t, err)
}

func TestLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passages.txt")
	require.NoError(t, os.WriteFile(path, []byte("one passage\n\nanother one\n"), 0o644))
	c, err := LoadCorpus(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one passage", "another one"}, c.Passages())

	_, err = LoadCorpus(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestWordsProvider(t *testing.T) {
	gen := generator.NewWithRand(rand.New(rand.NewSource(5)), generator.Options{Words: 4})
	w, err := NewWords([]string{"go"}, gen)
	require.NoError(t, err)
	assert.Equal(t, "go go go go", w.Next())

	_, err = NewWords(nil, gen)
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	var p Provider = Static("cat")
	assert.Equal(t, "cat", p.Next())
}
