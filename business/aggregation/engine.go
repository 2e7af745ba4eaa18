package aggregation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"whichGLP/business/snapshot"
	"whichGLP/domain"
)

// NullBooleanPolicy controls the denominator of rate metrics.
type NullBooleanPolicy string

const (
	// NullAsFalse counts a missing flag as "not mentioned"; the denominator
	// is the whole cohort.
	NullAsFalse NullBooleanPolicy = "false"
	// NullExcluded divides by the records that carry the flag.
	NullExcluded NullBooleanPolicy = "exclude"
)

const (
	DefaultTopSideEffects = 10
	DefaultTopLocations   = 10
)

// records grouped between cancellation checks
const cancelCheckEvery = 1024

type Options struct {
	TopSideEffects int
	TopLocations   int
	NullBooleans   NullBooleanPolicy
}

// Engine computes cohort statistics. It holds no state besides its options,
// so one Engine may serve concurrent callers.
type Engine struct {
	opts Options
	now  func() time.Time
}

func NewEngine(opts Options) *Engine {
	if opts.TopSideEffects <= 0 {
		opts.TopSideEffects = DefaultTopSideEffects
	}
	if opts.TopLocations <= 0 {
		opts.TopLocations = DefaultTopLocations
	}
	if opts.NullBooleans != NullExcluded {
		opts.NullBooleans = NullAsFalse
	}

	return &Engine{opts: opts, now: time.Now}
}

// ComputeAll groups the snapshot by primary drug. Results are ordered by
// count descending, then drug name ascending. It stops with ctx's error once
// ctx is done.
func (e *Engine) ComputeAll(ctx context.Context, snap *snapshot.Snapshot) ([]domain.DrugStatistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation aborted: %w", err)
	}

	groups := make(map[string][]*domain.ExperienceRecord)
	records := snap.Records()
	for i := range records {
		if i > 0 && i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("aggregation aborted: %w", err)
			}
		}
		drug := records[i].Drug()
		if drug == "" {
			continue
		}
		groups[drug] = append(groups[drug], &records[i])
	}

	out := make([]domain.DrugStatistics, 0, len(groups))
	for drug, cohort := range groups {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregation aborted: %w", err)
		}
		out = append(out, e.computeCohort(drug, cohort))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Drug < out[j].Drug
	})

	return out, nil
}

// ComputePlatform returns platform-wide totals for the snapshot.
func (e *Engine) ComputePlatform(snap *snapshot.Snapshot) domain.PlatformStats {
	drugs := make(map[string]struct{})
	locations := make(map[string]struct{})
	for _, r := range snap.Records() {
		if d := r.Drug(); d != "" {
			drugs[d] = struct{}{}
		}
		if r.Location != nil && *r.Location != "" {
			locations[*r.Location] = struct{}{}
		}
	}

	return domain.PlatformStats{
		TotalExperiences: snap.Len(),
		UniqueDrugs:      len(drugs),
		LocationsTracked: len(locations),
		SnapshotVersion:  snap.Version(),
		GeneratedAt:      e.now().UTC(),
	}
}

func (e *Engine) computeCohort(drug string, cohort []*domain.ExperienceRecord) domain.DrugStatistics {
	var (
		lossPct, lossAbs, duration, cost mean
		sentPre, sentPost, recScore      mean
		plateau, rebound, insurance      rate
	)

	sideEffects := newSideEffectTally()
	sources := domain.DrugSourceBreakdown{}
	demo := newDemographicsTally()

	for _, r := range cohort {
		lossPct.add(r.WeightLossPercent)
		lossAbs.add(r.WeightLossLbs)
		duration.add(r.DurationWeeks)
		cost.add(r.CostPerMonth)
		sentPre.add(r.SentimentPre)
		sentPost.add(r.SentimentPost)
		recScore.add(r.RecommendationScore)

		plateau.add(r.PlateauMentioned)
		rebound.add(r.ReboundWeightGain)
		insurance.add(r.InsuranceCoverage)

		sideEffects.add(r.SideEffects)

		if r.DrugSource != nil {
			switch *r.DrugSource {
			case domain.DrugSourceBrand:
				sources.Brand++
			case domain.DrugSourceCompounded:
				sources.Compounded++
			case domain.DrugSourceOutOfPocket:
				sources.OutOfPocket++
			default:
				sources.Other++
			}
		}

		demo.add(r)
	}

	return domain.DrugStatistics{
		Drug:  drug,
		Count: len(cohort),

		AvgWeightLossPercent:   lossPct.value(),
		AvgWeightLossAbs:       lossAbs.value(),
		AvgDurationWeeks:       duration.value(),
		AvgCostPerMonth:        cost.value(),
		AvgSentimentPre:        sentPre.value(),
		AvgSentimentPost:       sentPost.value(),
		AvgRecommendationScore: recScore.value(),

		PlateauRate:           plateau.value(len(cohort), e.opts.NullBooleans),
		ReboundRate:           rebound.value(len(cohort), e.opts.NullBooleans),
		InsuranceCoverageRate: insurance.value(len(cohort), e.opts.NullBooleans),

		TopSideEffects:                 sideEffects.top(e.opts.TopSideEffects),
		SideEffectSeverityDistribution: sideEffects.severity(),
		DrugSourceBreakdown:            sources,
		Demographics:                   demo.result(e.opts.TopLocations),
	}
}

// mean averages only the values that are present.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

type rate struct {
	yes   int
	known int
}

func (r *rate) add(v *bool) {
	if v == nil {
		return
	}
	r.known++
	if *v {
		r.yes++
	}
}

func (r *rate) value(cohort int, policy NullBooleanPolicy) float64 {
	if policy == NullExcluded {
		return percentage(r.yes, r.known)
	}
	return percentage(r.yes, cohort)
}

type demographicsTally struct {
	ages      map[domain.AgeBucket]int
	sex       map[string]int
	locations map[string]int
}

func newDemographicsTally() *demographicsTally {
	return &demographicsTally{
		ages:      make(map[domain.AgeBucket]int),
		sex:       make(map[string]int),
		locations: make(map[string]int),
	}
}

func (d *demographicsTally) add(r *domain.ExperienceRecord) {
	if r.AgeBucket != nil {
		d.ages[*r.AgeBucket]++
	}
	if r.Sex != nil && *r.Sex != "" {
		d.sex[*r.Sex]++
	}
	if loc := locationOf(r); loc != "" {
		d.locations[loc]++
	}
}

func (d *demographicsTally) result(topN int) domain.Demographics {
	locs := make([]domain.LocationCount, 0, len(d.locations))
	for loc, n := range d.locations {
		locs = append(locs, domain.LocationCount{Location: loc, Count: n})
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Count != locs[j].Count {
			return locs[i].Count > locs[j].Count
		}
		return locs[i].Location < locs[j].Location
	})
	if len(locs) > topN {
		locs = locs[:topN]
	}

	return domain.Demographics{
		AgeBuckets:   d.ages,
		Sex:          d.sex,
		TopLocations: locs,
	}
}

// locationOf prefers the state, then the free-form location.
func locationOf(r *domain.ExperienceRecord) string {
	if r.State != nil {
		if s := strings.TrimSpace(*r.State); s != "" {
			return s
		}
	}
	if r.Location != nil {
		return strings.TrimSpace(*r.Location)
	}
	return ""
}

func sortSideEffects(stats []domain.SideEffectStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
