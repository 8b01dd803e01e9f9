package discovery

import "strings"

// authorDelimiters are tried in order; the first one present wins.
var authorDelimiters = []string{", ", " dan ", " and ", " & "}

// ParseAuthors splits a single author string into multiple authors if it
// contains a common delimiter. Both English and Indonesian conjunctions are
// recognized.
func ParseAuthors(authorText string) []string {
	authorText = strings.TrimSpace(authorText)
	if authorText == "" {
		return []string{}
	}

	for _, delim := range authorDelimiters {
		if !strings.Contains(authorText, delim) {
			continue
		}

		authors := []string{}
		for part := range strings.SplitSeq(authorText, delim) {
			part = strings.TrimSpace(part)
			if part != "" {
				authors = append(authors, part)
			}
		}
		return authors
	}

	// No delimiters found, return as single author
	return []string{authorText}
}
