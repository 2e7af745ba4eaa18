package aggregation

import (
	"strings"

	"whichGLP/domain"

	"github.com/goccy/go-json"
)

type SideEffectKind int

const (
	// SideEffectPlain is a bare effect name with unknown severity.
	SideEffectPlain SideEffectKind = iota
	// SideEffectStructured carries an explicit {name, severity} pair.
	SideEffectStructured
)

type ParsedSideEffect struct {
	Kind     SideEffectKind
	Name     string
	Severity domain.Severity
}

// ParseSideEffect resolves a stored entry. Entries with a severity are
// structured already; otherwise the name may hold a JSON-encoded
// {"name", "severity"} object from the legacy encoding. Anything that fails to
// decode is kept verbatim as a plain name. ok is false for blank names.
func ParseSideEffect(se domain.SideEffect) (ParsedSideEffect, bool) {
	if se.Severity.Valid() {
		name := strings.TrimSpace(se.Name)
		if name == "" {
			return ParsedSideEffect{}, false
		}
		return ParsedSideEffect{Kind: SideEffectStructured, Name: name, Severity: se.Severity}, true
	}

	raw := strings.TrimSpace(se.Name)
	if raw == "" {
		return ParsedSideEffect{}, false
	}

	if strings.HasPrefix(raw, "{") {
		var legacy struct {
			Name     string  `json:"name"`
			Severity *string `json:"severity"`
		}
		if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
			name := strings.TrimSpace(legacy.Name)
			if name == "" {
				return ParsedSideEffect{}, false
			}

			parsed := ParsedSideEffect{Kind: SideEffectPlain, Name: name}
			if legacy.Severity != nil {
				sev := domain.Severity(strings.ToLower(strings.TrimSpace(*legacy.Severity)))
				if sev.Valid() {
					parsed.Kind = SideEffectStructured
					parsed.Severity = sev
				}
			}
			return parsed, true
		}
	}

	return ParsedSideEffect{Kind: SideEffectPlain, Name: raw}, true
}

type sideEffectTally struct {
	counts    map[string]int
	reporters int
	mild      int
	moderate  int
	severe    int
}

func newSideEffectTally() *sideEffectTally {
	return &sideEffectTally{counts: make(map[string]int)}
}

func (t *sideEffectTally) add(entries []domain.SideEffect) {
	reported := false
	for _, se := range entries {
		parsed, ok := ParseSideEffect(se)
		if !ok {
			continue
		}
		reported = true
		t.counts[parsed.Name]++

		switch parsed.Severity {
		case domain.SeverityMild:
			t.mild++
		case domain.SeverityModerate:
			t.moderate++
		case domain.SeveritySevere:
			t.severe++
		}
	}
	if reported {
		t.reporters++
	}
}

func (t *sideEffectTally) top(n int) []domain.SideEffectStat {
	stats := make([]domain.SideEffectStat, 0, len(t.counts))
	for name, count := range t.counts {
		stats = append(stats, domain.SideEffectStat{
			Name:                  name,
			Count:                 count,
			PercentageOfReporters: percentage(count, t.reporters),
		})
	}

	sortSideEffects(stats)

	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

func (t *sideEffectTally) severity() domain.SeverityDistribution {
	total := t.mild + t.moderate + t.severe
	if total == 0 {
		return domain.SeverityDistribution{}
	}
	return domain.SeverityDistribution{
		Mild:     percentage(t.mild, total),
		Moderate: percentage(t.moderate, total),
		Severe:   percentage(t.severe, total),
	}
}
