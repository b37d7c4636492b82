// Package quality scans parsed tables for data defects and applies
// configurable, auditable cleaning transformations. The analyzer is
// read-only; the cleaner runs its steps in a fixed order and emits one
// change record per mutation, so a run is fully reproducible from the
// original rows and its options.
package quality

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"tabledash/pkg/contracts/domain"
)

// DefaultMissingVocabulary lists string forms treated as missing values
// alongside empty and nil cells. Matching is on the trimmed, lowercased
// form.
func DefaultMissingVocabulary() []string {
	return []string{
		"null", "n/a", "na", "nan", "none", "-", ".", "undefined",
		"missing", "#n/a", "#na", "(blank)", "blank", "(empty)", "empty",
	}
}

type vocabSet map[string]struct{}

func newVocabSet(words []string) vocabSet {
	if len(words) == 0 {
		words = DefaultMissingVocabulary()
	}
	set := make(vocabSet, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// isMissing reports whether a cell counts as a missing value: nil, an
// empty or whitespace-only string, or a placeholder from the vocabulary.
func (v vocabSet) isMissing(cell any) bool {
	switch c := cell.(type) {
	case nil:
		return true
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(c))
		if trimmed == "" {
			return true
		}
		_, ok := v[trimmed]
		return ok
	default:
		return false
	}
}

// serializeCell renders a typed cell with a type marker so that the
// number 1 and the string "1" never collide in row serialization.
func serializeCell(cell any) string {
	switch c := cell.(type) {
	case nil:
		return "_"
	case float64:
		return "n:" + strconv.FormatFloat(c, 'f', -1, 64)
	case time.Time:
		return "d:" + c.Format("2006-01-02")
	case string:
		return "s:" + c
	default:
		return "?:"
	}
}

// serializeRow builds the full structural serialization used for
// duplicate detection: every column value, in column order.
func serializeRow(row domain.Row, columns []domain.Column) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(serializeCell(row[col.Name]))
	}
	return b.String()
}

// collapseWhitespace strips leading/trailing whitespace and collapses
// internal whitespace runs to a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase lowercases the value and capitalizes the first letter of
// each space-separated token, preserving the original spacing.
func titleCase(s string) string {
	tokens := strings.Split(strings.ToLower(s), " ")
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		runes := []rune(tok)
		runes[0] = unicode.ToUpper(runes[0])
		tokens[i] = string(runes)
	}
	return strings.Join(tokens, " ")
}

// textual reports whether case/whitespace transforms apply to a column.
func textual(t domain.ColumnType) bool {
	return t == domain.ColumnTypeText || t == domain.ColumnTypeCategory
}
