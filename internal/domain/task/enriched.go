package task

import "time"

// DisplayLayout renders timestamps as day-month-year with a 24h clock.
const DisplayLayout = "02-01-2006 15:04:05"

// Enriched is the projection returned by the pending and completed listings.
type Enriched struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	UserID        string  `json:"user_id"`
	UserName      *string `json:"user_name"`
	TaskDate      string  `json:"task_date"`
	CreatedAt     string  `json:"created_at"`
	CompletedFlag bool    `json:"completed_flag"`
	CompletedAt   *string `json:"completed_at"`
	DeletedFlag   bool    `json:"deleted_flag"`
}

// Enrich builds the listing projection. ownerName is nil when the owner
// could not be resolved. loc defaults to UTC.
func Enrich(t Task, ownerName *string, loc *time.Location) Enriched {
	if loc == nil {
		loc = time.UTC
	}

	e := Enriched{
		ID:            t.ID,
		Name:          t.Name,
		UserID:        t.UserID,
		UserName:      ownerName,
		TaskDate:      t.TaskDate.In(loc).Format(DisplayLayout),
		CreatedAt:     t.CreatedAt.In(loc).Format(DisplayLayout),
		CompletedFlag: t.Completed,
		DeletedFlag:   t.State.Flag(),
	}

	if t.CompletedDate != nil {
		s := t.CompletedDate.In(loc).Format(DisplayLayout)
		e.CompletedAt = &s
	}

	return e
}
