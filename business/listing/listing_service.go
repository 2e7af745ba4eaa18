package listing

import (
	"context"
	"fmt"
	"strings"

	"whichGLP/business/snapshot"
	"whichGLP/domain"
)

// SnapshotSource returns the live snapshot.
type SnapshotSource interface {
	Current() *snapshot.Snapshot
}

type ListingService struct {
	snapshots SnapshotSource
}

func NewListingService(snapshots SnapshotSource) *ListingService {
	return &ListingService{snapshots: snapshots}
}

// List filters, sorts and pages experiences. Total and page come from the same
// snapshot. Comment-sourced records are left out of listings.
func (s *ListingService) List(ctx context.Context, q domain.ListQuery) (domain.ExperiencePage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExperiencePage{}, fmt.Errorf("context error: %w", err)
	}

	q, err := normalize(q)
	if err != nil {
		return domain.ExperiencePage{}, err
	}

	snap := s.snapshots.Current()
	matched := filter(snap.Records(), q)
	sortRecords(matched, q.Sort, q.Direction)

	page := domain.ExperiencePage{
		Records:         []domain.ExperienceRecord{},
		Total:           len(matched),
		Cursor:          q.Cursor,
		SnapshotVersion: snap.Version(),
	}

	if q.Cursor < len(matched) {
		end := q.Cursor + q.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Records = make([]domain.ExperienceRecord, 0, end-q.Cursor)
		for _, r := range matched[q.Cursor:end] {
			page.Records = append(page.Records, *r)
		}
		if end < len(matched) {
			page.NextCursor = &end
		}
	}

	return page, nil
}

func (s *ListingService) GetByID(ctx context.Context, id string) (domain.ExperienceRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExperienceRecord{}, fmt.Errorf("context error: %w", err)
	}

	rec, ok := s.snapshots.Current().Get(id)
	if !ok {
		return domain.ExperienceRecord{}, domain.ErrExperienceNotFound
	}
	return rec, nil
}

func normalize(q domain.ListQuery) (domain.ListQuery, error) {
	if q.Sort == "" {
		q.Sort = domain.SortByDate
	}
	if _, ok := sortKeys[q.Sort]; !ok {
		return q, fmt.Errorf("%w: %q", domain.ErrInvalidSortField, q.Sort)
	}

	switch q.Direction {
	case "":
		q.Direction = domain.SortDesc
	case domain.SortAsc, domain.SortDesc:
	default:
		return q, fmt.Errorf("%w: %q", domain.ErrInvalidSortDirection, q.Direction)
	}

	if q.Limit <= 0 {
		q.Limit = domain.DefaultPageSize
	}
	if q.Limit > domain.MaxPageSize {
		q.Limit = domain.MaxPageSize
	}
	if q.Cursor < 0 {
		q.Cursor = 0
	}

	q.Drug = strings.TrimSpace(q.Drug)
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	return q, nil
}

func filter(records []domain.ExperienceRecord, q domain.ListQuery) []*domain.ExperienceRecord {
	out := make([]*domain.ExperienceRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.SourceType == domain.SourceTypeComment {
			continue
		}
		if q.Drug != "" && r.Drug() != q.Drug {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Summary), q.Search) {
			continue
		}
		out = append(out, r)
	}
	return out
}
