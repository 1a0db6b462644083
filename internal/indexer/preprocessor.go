package indexer

import "strings"

// Preprocess flattens a caption line: line breaks and whitespace runs become
// single spaces and the ends are trimmed.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
