package sources

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/runeset/elotrace/internal/domain/alias"
)

// flattenHTML strips an annual snapshot page down to its visible text.
// Script and style bodies are removed first so inline JS does not leak
// numbers into the fallback scan.
func flattenHTML(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text(), nil
}

// rankedLine matches one ranking entry in flattened page text:
// "<rank>. <team name>[.] <rating>". The name group is lazy so the
// rating grabs the trailing number.
var rankedLine = regexp.MustCompile(`(?m)^\s*\d{1,3}\.?\s+(.+?)\.?\s+(\d{3,4})(?:\.\d+)?\s*$`)

// standaloneNumber finds a 3-4 digit rating in loose text for the
// fallback scan.
var standaloneNumber = regexp.MustCompile(`\b(\d{3,4})(?:\.\d+)?\b`)

// fallbackScanWindow bounds how far past a name occurrence the
// fallback scan looks for a rating. Beyond this the number almost
// certainly belongs to a different team's entry.
const fallbackScanWindow = 80

// extractRating locates the rating for a team in flattened page text.
// Strategies, in order: the exact ranked-line pattern against the
// requested name, the same pattern against each member of the name's
// alias group, and finally a bounded scan for the name followed by a
// nearby standalone number. The last strategy is knowingly lossy; it
// only runs when the structured forms found nothing.
func extractRating(text, name string, m alias.Matcher) (float64, bool) {
	if rating, ok := ratingFromRankedLines(text, name, m); ok {
		return rating, true
	}

	names := m.Variants(name)
	if names == nil {
		names = []string{name}
	}
	for _, candidate := range names {
		if rating, ok := fallbackScan(text, candidate); ok {
			return rating, true
		}
	}
	return 0, false
}

// ratingFromRankedLines walks every ranked entry on the page and asks
// the matcher whether the entry names the requested team. The matcher
// owns both exact case-insensitive equality and alias-group
// membership, so strategies (a) and (b) collapse into one pass.
func ratingFromRankedLines(text, name string, m alias.Matcher) (float64, bool) {
	for _, match := range rankedLine.FindAllStringSubmatch(text, -1) {
		if !m.Match(match[1], name) {
			continue
		}
		rating, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}
		return rating, true
	}
	return 0, false
}

// fallbackScan looks for the name anywhere in the text followed within
// a bounded distance by a standalone 3-4 digit number. The whole scan
// runs on the lowered text: lowering can change a rune's byte length
// (U+0130 does), so offsets into the lowered string must never slice
// the original. Digits survive lowering untouched, which keeps the
// number parse exact.
func fallbackScan(text, name string) (float64, bool) {
	lowText := strings.ToLower(text)
	lowName := strings.ToLower(strings.TrimSpace(name))
	if lowName == "" {
		return 0, false
	}

	for start := 0; ; {
		i := strings.Index(lowText[start:], lowName)
		if i < 0 {
			return 0, false
		}
		at := start + i + len(lowName)
		end := at + fallbackScanWindow
		if end > len(lowText) {
			end = len(lowText)
		}
		if loc := standaloneNumber.FindStringSubmatchIndex(lowText[at:end]); loc != nil {
			rating, err := strconv.ParseFloat(lowText[at+loc[2]:at+loc[3]], 64)
			if err == nil {
				return rating, true
			}
		}
		start = at
	}
}
