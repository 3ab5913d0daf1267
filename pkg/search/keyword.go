package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/cmdbkit/cmdbkit/pkg/search/index"
)

// EmptySearchCharacter is the reserved keyword matching attributes that exist
// but hold a blank value.
const EmptySearchCharacter = `\-`

const (
	orDelimiter  = "|"
	andDelimiter = "&"
)

var (
	orWordRe   = regexp.MustCompile(`(?i)\s+or\s+`)
	andWordRe  = regexp.MustCompile(`(?i)\s+and\s+`)
	dateTermRe = regexp.MustCompile(`^([<>]?)(\d{4})[-/](\d{2})[-/](\d{2})$`)
)

// parseKeyword compiles one hint keyword into OR-of-AND term groups. An
// empty keyword yields no groups: the hint then selects an attribute for
// output without constraining the query.
func parseKeyword(keyword string) [][]index.Term {
	if strings.TrimSpace(keyword) == "" {
		return nil
	}

	var alternatives [][]index.Term
	for _, alt := range splitOn(keyword, orDelimiter, orWordRe) {
		var group []index.Term
		for _, raw := range splitOn(alt, andDelimiter, andWordRe) {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			group = append(group, parseTerm(raw))
		}
		if len(group) > 0 {
			alternatives = append(alternatives, group)
		}
	}
	return alternatives
}

// splitOn splits on the symbol delimiter and on its spelled-out word form.
func splitOn(s, symbol string, wordRe *regexp.Regexp) []string {
	return strings.Split(wordRe.ReplaceAllString(s, symbol), symbol)
}

func parseTerm(raw string) index.Term {
	if raw == EmptySearchCharacter {
		return index.Term{Kind: index.TermEmpty}
	}

	if m := dateTermRe.FindStringSubmatch(raw); m != nil {
		// Strict parse: a date-shaped term with an impossible month or
		// day falls back to substring matching.
		date, err := time.Parse("2006-01-02", m[2]+"-"+m[3]+"-"+m[4])
		if err == nil {
			switch m[1] {
			case "<":
				return index.Term{Kind: index.TermDateBefore, Date: date}
			case ">":
				return index.Term{Kind: index.TermDateAfter, Date: date}
			default:
				return index.Term{Kind: index.TermDateOn, Date: date}
			}
		}
	}

	return index.Term{Kind: index.TermSubstring, Text: raw}
}
