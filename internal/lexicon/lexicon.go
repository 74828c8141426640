// Package lexicon loads the Loughran-McDonald master dictionary into three
// read-only word sets.
package lexicon

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
)

const (
	TAG_POSITIVE    = "positive"
	TAG_NEGATIVE    = "negative"
	TAG_UNCERTAINTY = "uncertainty"
)

var ErrDictionaryNotFound = errors.New("Loughran-McDonald dictionary not found")

var (
	sharedInstance *Lexicon
	sharedErr      error
	sharedOnce     sync.Once
)

// dictionaryRow maps the columns we use from the master dictionary CSV.
// Column values are the year a word was added; negative values mark removals.
type dictionaryRow struct {
	Word        string `csv:"Word"`
	Positive    int    `csv:"Positive"`
	Negative    int    `csv:"Negative"`
	Uncertainty int    `csv:"Uncertainty"`
}

// Lexicon is never mutated after construction and is safe for concurrent
// readers.
type Lexicon struct {
	positive    map[string]struct{}
	negative    map[string]struct{}
	uncertainty map[string]struct{}
}

// New builds a lexicon from explicit word lists. Words are lowercased.
func New(positive, negative, uncertainty []string) *Lexicon {
	return &Lexicon{
		positive:    toSet(positive),
		negative:    toSet(negative),
		uncertainty: toSet(uncertainty),
	}
}

// Parse reads a master dictionary CSV.
func Parse(r io.Reader) (*Lexicon, error) {
	var rows []*dictionaryRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}

	var pos, neg, unc []string
	for _, row := range rows {
		if row == nil {
			continue
		}
		if row.Positive > 0 {
			pos = append(pos, row.Word)
		}
		if row.Negative > 0 {
			neg = append(neg, row.Word)
		}
		if row.Uncertainty > 0 {
			unc = append(unc, row.Word)
		}
	}

	return New(pos, neg, unc), nil
}

// LoadFile parses the dictionary at path.
func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDictionaryNotFound, path)
		}
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	lex, err := Parse(f)
	if err != nil {
		return nil, err
	}

	slog.Info("[Lexicon] Dictionary loaded",
		slog.String("path", path),
		slog.Int("positive", lex.Size(TAG_POSITIVE)),
		slog.Int("negative", lex.Size(TAG_NEGATIVE)),
		slog.Int("uncertainty", lex.Size(TAG_UNCERTAINTY)))

	return lex, nil
}

// Shared loads the dictionary at most once per process. Later calls return
// the first result regardless of path.
func Shared(path string) (*Lexicon, error) {
	sharedOnce.Do(func() {
		sharedInstance, sharedErr = LoadFile(path)
	})
	return sharedInstance, sharedErr
}

func (l *Lexicon) IsPositive(word string) bool    { return has(l.positive, word) }
func (l *Lexicon) IsNegative(word string) bool    { return has(l.negative, word) }
func (l *Lexicon) IsUncertainty(word string) bool { return has(l.uncertainty, word) }

// Size returns the number of words carrying tag.
func (l *Lexicon) Size(tag string) int {
	switch tag {
	case TAG_POSITIVE:
		return len(l.positive)
	case TAG_NEGATIVE:
		return len(l.negative)
	case TAG_UNCERTAINTY:
		return len(l.uncertainty)
	default:
		return 0
	}
}

func has(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
