// Package passage supplies the text a user types during a test.
package passage

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/typetest/internal/generator"
	"github.com/verte-zerg/typetest/internal/wordlist"
)

//go:embed passages.txt
var defaultPassages string

// Provider returns one passage per call.
type Provider interface {
	Next() string
}

// Corpus picks passages uniformly at random from a fixed list.
type Corpus struct {
	passages []string
	rnd      *rand.Rand
}

// NewCorpus builds a corpus over passages. A nil rnd is seeded from the clock.
func NewCorpus(passages []string, rnd *rand.Rand) (*Corpus, error) {
	if len(passages) == 0 {
		return nil, fmt.Errorf("passage corpus is empty")
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Corpus{passages: append([]string(nil), passages...), rnd: rnd}, nil
}

// DefaultCorpus returns the built-in corpus.
func DefaultCorpus(rnd *rand.Rand) *Corpus {
	passages, err := wordlist.ParsePassages(strings.NewReader(defaultPassages))
	if err != nil {
		panic(fmt.Sprintf("embedded passages: %v", err))
	}
	c, err := NewCorpus(passages, rnd)
	if err != nil {
		panic(fmt.Sprintf("embedded passages: %v", err))
	}
	return c
}

// LoadCorpus reads a corpus file with one passage per line.
func LoadCorpus(path string, rnd *rand.Rand) (*Corpus, error) {
	passages, err := wordlist.LoadPassages(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load passages from %s: %w", path, err)
	}
	return NewCorpus(passages, rnd)
}

// Next implements Provider.
func (c *Corpus) Next() string {
	return c.passages[c.rnd.Intn(len(c.passages))]
}

// Passages returns a copy of the corpus contents.
func (c *Corpus) Passages() []string {
	return append([]string(nil), c.passages...)
}

// Words builds passages by drawing random words from a word list.
type Words struct {
	gen   *generator.Generator
	words []string
}

// NewWords returns a provider drawing from words.
func NewWords(words []string, gen *generator.Generator) (*Words, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return &Words{gen: gen, words: words}, nil
}

// Next implements Provider.
func (w *Words) Next() string {
	return w.gen.Passage(w.words)
}

// Static always returns the same passage.
type Static string

// Next implements Provider.
func (s Static) Next() string {
	return string(s)
}
