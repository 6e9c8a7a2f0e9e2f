package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Pattern-based extraction. Requires no external service and is the
// fallback for the model-backed strategy, so it must always produce at
// least one row.
type Heuristic struct {
	log *slog.Logger
}

func NewHeuristic(log *slog.Logger) *Heuristic {
	if log == nil {
		log = slog.Default()
	}
	return &Heuristic{log: log}
}

func (h *Heuristic) Name() string { return "heuristic" }

// Stop words bound lazy captures since RE2 has no lookahead.
var (
	reProject = regexp.MustCompile(`(?i)(?:project(?:\s+name)?|job(?:\s+(?:name|title))?|subject)\s*[:\-]\s*([A-Za-z0-9 ,.&()/-]{3,120}?)(?:\s+(?:bid\s+due|bid\s+date|due\s+date|scope|subcontractor|trade)\b|$)`)
	reScope   = regexp.MustCompile(`(?i)scope(?:\s+of\s+work)?\s*[:\-]\s*([A-Za-z0-9 ,.&()/-]{3,180}?)(?:\s+(?:bid\s+due|bid\s+date|due\s+date|subcontractor|trade)\b|$)`)
	reSub     = regexp.MustCompile(`(?i)(?:subcontractor|contractor)\s*(?:name)?\s*[:\-]\s*([A-Za-z0-9 ,.&()/-]{2,80}?)(?:\s+(?:trade|scope|bid\s+due|due\s+date)\b|$)`)
	reTrade   = regexp.MustCompile(`(?i)\b(concrete|electrical|plumbing|hvac|mechanical|drywall|framing|roofing|masonry|steel|glazing|painting|flooring|earthwork|landscaping|demolition)\b`)
	reDate    = regexp.MustCompile(`(?i)(?:bid\s+due\s+date|bid\s+date|proposal\s+due|due\s+date|planned\s+start|start\s+date)\s*[:\-]?\s*((?:\d{4}-\d{2}-\d{2})|(?:\d{1,2}/\d{1,2}/\d{2,4})|(?:[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}))`)
)

// Per-pattern confidence bumps over the floor. A row built purely from
// defaults scores 0.40, below any sane review threshold.
const (
	confFloor   = 0.40
	confProject = 0.12
	confDate    = 0.08
	confScope   = 0.08
	confSub     = 0.06
	confTrade   = 0.06
)

func (h *Heuristic) Extract(_ context.Context, req Request) ([]RawRow, error) {
	text := NormalizeText(req.Text)
	stem := strings.TrimSuffix(req.Filename, filepath.Ext(req.Filename))

	confidence := confFloor
	row := RawRow{
		SourcePage: 1,
	}

	if m := reProject.FindStringSubmatch(text); m != nil {
		row.ProjectName = strings.TrimSpace(m[1])
		confidence += confProject
	} else {
		row.ProjectName = stem
	}

	if m := reScope.FindStringSubmatch(text); m != nil {
		row.TaskName = strings.TrimSpace(m[1])
		confidence += confScope
	} else if len(text) > 0 {
		row.TaskName = snippet(text, 120)
	} else {
		row.TaskName = stem
	}

	if m := reSub.FindStringSubmatch(text); m != nil {
		row.SCName = strings.TrimSpace(m[1])
		confidence += confSub
	}

	if m := reTrade.FindStringSubmatch(text); m != nil {
		row.Trade = strings.ToLower(m[1])
		confidence += confTrade
	}

	if m := reDate.FindStringSubmatch(text); m != nil {
		row.PlannedStart = strings.TrimSpace(m[1])
		confidence += confDate
	}

	row.Confidence = confidence
	row.SourceSnippet = snippet(text, 180)

	h.log.Debug("heuristic.extract",
		"document_id", req.DocumentID,
		"project_matched", row.ProjectName != stem,
		"confidence", confidence,
	)
	return []RawRow{row}, nil
}

// NormalizeText folds all whitespace runs to single spaces and trims.
func NormalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// snippet truncates to at most n bytes without splitting a rune; the result
// must stay valid UTF-8 for Postgres text columns.
func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
