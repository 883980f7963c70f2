package mmhealth

import (
	"iter"
	"strings"
)

// DefaultPrefix marks the State rows of `mmhealth node show -Y`.
const DefaultPrefix = "mmhealth:State:"

const headerRowType = "HEADER"

// DefaultColumns is the column order assumed until the tool emits its own
// HEADER row.
var DefaultColumns = []string{
	"identifier",
	"section",
	"rowtype",
	"version",
	"sequence",
	FieldComponent,
	FieldEntityName,
	FieldEntityType,
	FieldStatus,
	FieldLastStatusChange,
}

// Parse returns the State rows of text. Lines not starting with prefix are
// banners and are skipped. A HEADER row replaces the column schema for the
// rows after it and is not yielded itself.
//
// The sequence is lazy; ranging over it again re-parses text.
func Parse(text, prefix string) iter.Seq[StatusRecord] {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return func(yield func(StatusRecord) bool) {
		columns := DefaultColumns
		for line := range strings.Lines(text) {
			line = strings.TrimRight(line, "\r\n")
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			// Values containing ':' are not escaped by this parser.
			tokens := strings.Split(line, ":")
			if len(tokens) > 2 && tokens[2] == headerRowType {
				columns = headerColumns(tokens)
				continue
			}
			if !yield(newRecord(columns, tokens)) {
				return
			}
		}
	}
}

// The trailing ':' of every row leaves an empty last token.
func headerColumns(tokens []string) []string {
	if n := len(tokens); n > 0 && tokens[n-1] == "" {
		tokens = tokens[:n-1]
	}
	return tokens
}
