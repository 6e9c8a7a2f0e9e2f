package doctext

import (
	"regexp"
	"strconv"
	"strings"
)

// Text-showing operators in decoded PDF content streams: "(...) Tj" and
// "[(..) .. (..)] TJ". Pulling the literals out of those gets us usable
// text for pattern matching without a full layout engine.
var reShowText = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

func scrapeText(content string) string {
	matches := reShowText.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := unescapePDFString(m[1]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func unescapePDFString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(s[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// up to three octal digits
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			if v, err := strconv.ParseUint(s[i:j], 8, 16); err == nil && v < 256 {
				b.WriteByte(byte(v))
			}
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return strings.TrimSpace(b.String())
}
