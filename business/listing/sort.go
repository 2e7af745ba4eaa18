package listing

import (
	"sort"

	"whichGLP/domain"
)

// sortKey extracts the primary sort value; ok is false when the field is null.
type sortKey func(r *domain.ExperienceRecord) (v float64, ok bool)

var sortKeys = map[domain.SortField]sortKey{
	domain.SortByDate: func(r *domain.ExperienceRecord) (float64, bool) {
		if r.CreatedAt == nil {
			return 0, false
		}
		return float64(r.CreatedAt.UnixMicro()), true
	},
	domain.SortByRating:              floatKey(func(r *domain.ExperienceRecord) *float64 { return r.RecommendationScore }),
	domain.SortByDuration:            floatKey(func(r *domain.ExperienceRecord) *float64 { return r.DurationWeeks }),
	domain.SortByStartWeight:         floatKey(func(r *domain.ExperienceRecord) *float64 { return r.BeginningWeightLbs }),
	domain.SortByEndWeight:           floatKey(func(r *domain.ExperienceRecord) *float64 { return r.EndWeightLbs }),
	domain.SortByWeightChange:        floatKey(func(r *domain.ExperienceRecord) *float64 { return r.WeightLossLbs }),
	domain.SortByWeightChangePercent: floatKey(func(r *domain.ExperienceRecord) *float64 { return r.WeightLossPercent }),
	domain.SortBySpeed:               floatKey(func(r *domain.ExperienceRecord) *float64 { return r.WeightLossSpeedLbsPerMonth }),
	domain.SortBySpeedPercent:        floatKey(func(r *domain.ExperienceRecord) *float64 { return r.WeightLossSpeedPercentPerMonth }),
}

func floatKey(get func(r *domain.ExperienceRecord) *float64) sortKey {
	return func(r *domain.ExperienceRecord) (float64, bool) {
		v := get(r)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

// sortRecords orders by the primary field with nulls last in either
// direction, then by ID ascending so adjacent pages never overlap.
func sortRecords(records []*domain.ExperienceRecord, field domain.SortField, dir domain.SortDirection) {
	key := sortKeys[field]
	desc := dir == domain.SortDesc

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		va, oka := key(a)
		vb, okb := key(b)

		switch {
		case oka && !okb:
			return true
		case !oka && okb:
			return false
		case oka && okb && va != vb:
			if desc {
				return va > vb
			}
			return va < vb
		}
		return a.ID < b.ID
	})
}
