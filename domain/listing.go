package domain

type SortField string

const (
	SortByDate                SortField = "date"
	SortByRating              SortField = "rating"
	SortByDuration            SortField = "duration"
	SortByStartWeight         SortField = "start_weight"
	SortByEndWeight           SortField = "end_weight"
	SortByWeightChange        SortField = "weight_change"
	SortByWeightChangePercent SortField = "weight_change_percent"
	SortBySpeed               SortField = "speed"
	SortBySpeedPercent        SortField = "speed_percent"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery filters, orders and pages experiences. Cursor is the number of
// records the caller has already retrieved.
type ListQuery struct {
	Drug      string
	Search    string
	Sort      SortField
	Direction SortDirection
	Cursor    int
	Limit     int
}

type ExperiencePage struct {
	Records         []ExperienceRecord `json:"records"`
	Total           int                `json:"total"`
	Cursor          int                `json:"cursor"`
	NextCursor      *int               `json:"next_cursor"`
	SnapshotVersion uint64             `json:"snapshot_version"`
}
