package materializer

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
	"time"

	"whichGLP/domain"

	"github.com/goccy/go-json"
)

const weeksPerMonth = 4.33

// Materialize turns raw rows into one record per originating post. It is a
// pure function: identical input yields identical output regardless of the
// order rows arrive in.
func Materialize(rows []domain.RawExperience) []domain.ExperienceRecord {
	eligible := make([]domain.RawExperience, 0, len(rows))
	for _, row := range rows {
		if !isEligible(row) {
			continue
		}
		eligible = append(eligible, row)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return rowLess(eligible[i], eligible[j])
	})

	records := make([]domain.ExperienceRecord, 0, len(eligible))
	lastKey := ""
	for i, row := range eligible {
		key := row.OriginKey()
		if i > 0 && key == lastKey {
			continue
		}
		lastKey = key
		records = append(records, buildRecord(row))
	}

	return records
}

func isEligible(row domain.RawExperience) bool {
	if row.FeatureID == "" || row.OriginKey() == "" {
		return false
	}
	if trimmed(row.PrimaryDrug) == nil {
		return false
	}
	return trimmed(row.Summary) != nil
}

// rowLess orders rows by origin, then picks the best representative first:
// post-level extraction over comment-level, higher post sentiment, most recent
// processing, lowest feature id.
func rowLess(a, b domain.RawExperience) bool {
	if ka, kb := a.OriginKey(), b.OriginKey(); ka != kb {
		return ka < kb
	}

	aComment, bComment := isComment(a), isComment(b)
	if aComment != bComment {
		return !aComment
	}

	if c := compareDescNullsLast(a.SentimentPost, b.SentimentPost); c != 0 {
		return c < 0
	}

	if c := compareTimeDescNullsLast(a.ProcessedAt, b.ProcessedAt); c != 0 {
		return c < 0
	}

	return a.FeatureID < b.FeatureID
}

func isComment(row domain.RawExperience) bool {
	return row.CommentID != nil && *row.CommentID != ""
}

func compareDescNullsLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

func compareTimeDescNullsLast(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case a.Before(*b):
		return 1
	}
	return 0
}

func buildRecord(row domain.RawExperience) domain.ExperienceRecord {
	rec := domain.ExperienceRecord{
		ID:          row.FeatureID,
		PostID:      derefString(row.PostID),
		CommentID:   row.CommentID,
		Subreddit:   coalesceString(row.PostSubreddit, row.CommentSubreddit),
		ProcessedAt: row.ProcessedAt,
		CreatedAt:   coalesceTime(row.PostCreatedAt, row.CommentCreatedAt),

		PostTitle:   derefString(row.PostTitle),
		PostText:    derefString(row.PostBody),
		CommentText: derefString(row.CommentBody),
		Author:      coalesceString(row.PostAuthor, row.CommentAuthor),
		Score:       coalesceInt(row.PostScore, row.CommentScore),

		PrimaryDrug:         trimmed(row.PrimaryDrug),
		Summary:             strings.TrimSpace(derefString(row.Summary)),
		SentimentPre:        unitInterval(row.SentimentPre),
		SentimentPost:       unitInterval(row.SentimentPost),
		RecommendationScore: unitInterval(row.RecommendationScore),

		Age:      row.Age,
		Sex:      lowered(row.Sex),
		Location: trimmed(row.Location),
		State:    trimmed(row.State),
		Country:  trimmed(row.Country),

		BeginningWeight:   parseWeight(row.BeginningWeight),
		EndWeight:         parseWeight(row.EndWeight),
		DurationWeeks:     nonNegative(row.DurationWeeks),
		CostPerMonth:      nonNegative(row.CostPerMonth),
		Currency:          trimmed(row.Currency),
		InsuranceCoverage: row.HasInsurance,
		InsuranceProvider: trimmed(row.InsuranceProvider),
		SideEffects:       parseSideEffects(row.SideEffects),
		Comorbidities:     parseStringList(row.Comorbidities),
		DrugSource:        parseDrugSource(row.DrugSource),
		PlateauMentioned:  row.PlateauMentioned,
		ReboundWeightGain: row.ReboundWeightGain,
	}

	rec.SourceType = domain.SourceTypePost
	if isComment(row) {
		rec.SourceType = domain.SourceTypeComment
	}

	derive(&rec)
	return rec
}

// derive fills the pre-calculated columns. Weights are normalized to lbs
// before subtraction so mixed-unit pairs are comparable.
func derive(rec *domain.ExperienceRecord) {
	if rec.BeginningWeight != nil {
		rec.BeginningWeightLbs = ptr(rec.BeginningWeight.Lbs())
	}
	if rec.EndWeight != nil {
		rec.EndWeightLbs = ptr(rec.EndWeight.Lbs())
	}

	if rec.BeginningWeightLbs != nil && rec.EndWeightLbs != nil {
		loss := *rec.BeginningWeightLbs - *rec.EndWeightLbs
		rec.WeightLossLbs = ptr(loss)

		if *rec.BeginningWeightLbs > 0 {
			rec.WeightLossPercent = ptr(loss / *rec.BeginningWeightLbs * 100)
		}

		if rec.DurationWeeks != nil && *rec.DurationWeeks > 0 {
			months := *rec.DurationWeeks / weeksPerMonth
			rec.WeightLossSpeedLbsPerMonth = ptr(loss / months)
			if rec.WeightLossPercent != nil {
				rec.WeightLossSpeedPercentPerMonth = ptr(*rec.WeightLossPercent / months)
			}
		}
	}

	if rec.SentimentPre != nil && rec.SentimentPost != nil {
		rec.SentimentChange = ptr(*rec.SentimentPost - *rec.SentimentPre)
	}

	if rec.Age != nil {
		bucket := ageBucket(*rec.Age)
		rec.AgeBucket = &bucket
	}
}

func ageBucket(age int) domain.AgeBucket {
	switch {
	case age < 25:
		return domain.AgeBucket18To24
	case age < 35:
		return domain.AgeBucket25To34
	case age < 45:
		return domain.AgeBucket35To44
	case age < 55:
		return domain.AgeBucket45To54
	case age < 65:
		return domain.AgeBucket55To64
	default:
		return domain.AgeBucket65Plus
	}
}

type rawWeight struct {
	Value json.RawMessage `json:"value"`
	Unit  string          `json:"unit"`
}

// parseWeight accepts {"value": 200, "unit": "lbs"} with the value as a
// number or numeric string. Unknown units and non-positive values yield nil.
func parseWeight(raw []byte) *domain.Weight {
	if isNullJSON(raw) {
		return nil
	}

	var w rawWeight
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil
	}

	value, ok := parseNumber(w.Value)
	if !ok || value <= 0 {
		return nil
	}

	unit := domain.WeightUnit(strings.ToLower(strings.TrimSpace(w.Unit)))
	if unit != domain.WeightUnitLbs && unit != domain.WeightUnitKg {
		return nil
	}

	return &domain.Weight{Value: value, Unit: unit}
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	if isNullJSON(raw) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseSideEffects decodes the stored array. Elements are either objects or
// strings; strings are kept verbatim (they may carry the legacy JSON-in-string
// encoding, resolved during aggregation).
func parseSideEffects(raw []byte) []domain.SideEffect {
	if isNullJSON(raw) {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}

	out := make([]domain.SideEffect, 0, len(elems))
	for _, elem := range elems {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				out = append(out, domain.SideEffect{Name: s})
			}
			continue
		}

		var obj struct {
			Name     string `json:"name"`
			Severity string `json:"severity"`
		}
		if err := json.Unmarshal(elem, &obj); err != nil || strings.TrimSpace(obj.Name) == "" {
			continue
		}
		sev := domain.Severity(strings.ToLower(strings.TrimSpace(obj.Severity)))
		if !sev.Valid() {
			sev = ""
		}
		out = append(out, domain.SideEffect{Name: obj.Name, Severity: sev})
	}

	return out
}

func parseStringList(raw []byte) []string {
	if isNullJSON(raw) {
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDrugSource(s *string) *domain.DrugSource {
	v := lowered(s)
	if v == nil {
		return nil
	}

	var src domain.DrugSource
	switch strings.NewReplacer("_", "-", " ", "-").Replace(*v) {
	case "brand":
		src = domain.DrugSourceBrand
	case "compounded":
		src = domain.DrugSourceCompounded
	case "out-of-pocket":
		src = domain.DrugSourceOutOfPocket
	default:
		src = domain.DrugSourceOther
	}
	return &src
}

func isNullJSON(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func unitInterval(v *float64) *float64 {
	if v == nil || *v < 0 || *v > 1 {
		return nil
	}
	return v
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func lowered(s *string) *string {
	v := trimmed(s)
	if v == nil {
		return nil
	}
	l := strings.ToLower(*v)
	return &l
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func coalesceString(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func coalesceTime(values ...*time.Time) *time.Time {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func coalesceInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func ptr[T any](v T) *T {
	return &v
}
