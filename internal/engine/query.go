package engine

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/note"
)

// CompileQuery translates the user search syntax into the FTS5 MATCH
// grammar. The user syntax mixes bare terms, quoted phrases, AND/OR/NOT,
// parenthesized groups, and +tag filters; +tag collides with FTS5's own
// "required term" prefix, so tags are rewritten as a column filter on the
// tags field.
//
// Rules: quoted spans pass through untouched; parenthesized spans are
// compiled recursively; a lone '+' is kept verbatim; '+tag' is validated and
// becomes tags:"+tag"; AND, OR, NOT pass through; every other word is quoted
// as a literal term. A backslash escapes the next character. A blank query
// compiles to the empty string.
func CompileQuery(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	if err := checkBalancedQuotes(query); err != nil {
		return "", err
	}
	if err := checkBalancedParens(query); err != nil {
		return "", err
	}

	parts, err := compileSections(query)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

// checkBalancedQuotes rejects queries with an odd number of unescaped
// double quotes.
func checkBalancedQuotes(query string) error {
	count := 0
	escaped := false
	for _, c := range query {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			count++
		}
	}
	if count%2 != 0 {
		return &apperr.InvalidQueryError{Reason: "unbalanced quotes in search query"}
	}
	return nil
}

// checkBalancedParens rejects queries whose parentheses (outside quotes)
// are unbalanced or close before they open.
func checkBalancedParens(query string) error {
	depth := 0
	inQuotes := false
	escaped := false
	for _, c := range query {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return &apperr.InvalidQueryError{
					Reason: "unbalanced parentheses in search query: too many closing parentheses",
				}
			}
		}
	}
	if depth != 0 {
		return &apperr.InvalidQueryError{
			Reason: "unbalanced parentheses in search query: missing closing parentheses",
		}
	}
	return nil
}

// compileSections rewrites the query left to right, tracking quote state and
// paren depth. Quoted spans are copied through whole; top-level paren spans
// are compiled recursively and re-wrapped; everything else is word-compiled.
func compileSections(query string) ([]string, error) {
	var parts []string
	inQuotes := false
	parenDepth := 0
	sectionStart := 0
	escaped := false

	for i, c := range query {
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}

		if c == '"' && parenDepth == 0 {
			if !inQuotes {
				if i > sectionStart {
					if err := compileWords(query[sectionStart:i], &parts); err != nil {
						return nil, err
					}
				}
				sectionStart = i
			} else {
				parts = append(parts, query[sectionStart:i+1])
				sectionStart = i + 1
			}
			inQuotes = !inQuotes
			continue
		}

		if inQuotes {
			continue
		}
		switch c {
		case '(':
			if parenDepth == 0 {
				if i > sectionStart {
					if err := compileWords(query[sectionStart:i], &parts); err != nil {
						return nil, err
					}
				}
				sectionStart = i
			}
			parenDepth++
		case ')':
			parenDepth--
			if parenDepth == 0 {
				inner, err := compileGroup(query[sectionStart+1 : i])
				if err != nil {
					return nil, err
				}
				parts = append(parts, "("+inner+")")
				sectionStart = i + 1
			}
		}
	}

	if sectionStart < len(query) {
		if err := compileWords(query[sectionStart:], &parts); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// compileGroup compiles the interior of a parenthesized span with the same
// algorithm as the whole query.
func compileGroup(inner string) (string, error) {
	if strings.TrimSpace(inner) == "" {
		return "", nil
	}
	parts, err := compileSections(inner)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

// compileWords splits an unquoted span on whitespace and classifies each
// word.
func compileWords(section string, parts *[]string) error {
	for _, word := range strings.Fields(section) {
		switch {
		case word == "+":
			*parts = append(*parts, word)
		case strings.HasPrefix(word, "+"):
			if _, err := note.ValidateTag(word); err != nil {
				return &apperr.InvalidQueryError{
					Reason: fmt.Sprintf("invalid tag %q: %v", word, err),
				}
			}
			*parts = append(*parts, `tags:"`+word+`"`)
		case word == "AND" || word == "OR" || word == "NOT":
			*parts = append(*parts, word)
		default:
			*parts = append(*parts, `"`+word+`"`)
		}
	}
	return nil
}
