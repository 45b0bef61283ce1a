package db

import (
	"strconv"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// ScheduleQuery is the storage-level listing contract. Zero values disable a
// predicate. Rows are always ordered by last_modified_at DESC, id DESC.
type ScheduleQuery struct {
	PublicOnly   bool
	OwnerID      int
	ModifiedFrom *time.Time // inclusive
	ModifiedTo   *time.Time // inclusive
	AuthorName   string     // case-sensitive substring of the owner's name
	Limit        int
	Offset       int
}

const scheduleSelect = `
	SELECT s.id, s.owner_id, u.name AS author_name, s.content, s.start_at, s.end_at,
	       s.is_public, s.created_at, s.last_modified_at
	  FROM schedules s
	  JOIN users u ON u.id = s.owner_id`

// SQL renders q as a statement with positional parameters. User input only ever
// reaches the database through args.
func (q ScheduleQuery) SQL() (string, []any) {
	var (
		where []string
		args  []any
	)
	param := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.PublicOnly {
		where = append(where, "s.is_public = TRUE")
	}
	if q.OwnerID != 0 {
		where = append(where, "s.owner_id = "+param(q.OwnerID))
	}
	if q.ModifiedFrom != nil {
		where = append(where, "s.last_modified_at >= "+param(*q.ModifiedFrom))
	}
	if q.ModifiedTo != nil {
		where = append(where, "s.last_modified_at <= "+param(*q.ModifiedTo))
	}
	if q.AuthorName != "" {
		// strpos keeps the match literal; LIKE would treat % and _ as wildcards
		where = append(where, "strpos(u.name, "+param(q.AuthorName)+") > 0")
	}

	var b strings.Builder
	b.WriteString(scheduleSelect)
	if len(where) > 0 {
		b.WriteString("\n\t WHERE ")
		b.WriteString(strings.Join(where, "\n\t   AND "))
	}
	b.WriteString("\n\t ORDER BY s.last_modified_at DESC, s.id DESC")
	if q.Limit > 0 {
		b.WriteString("\n\t LIMIT " + param(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET " + param(q.Offset))
	}
	b.WriteString(";")
	return b.String(), args
}

// Matches applies the predicates of q to one schedule. Stores that filter in
// process use it to stay consistent with SQL.
func (q ScheduleQuery) Matches(s model.Schedule) bool {
	if q.PublicOnly && !s.IsPublic {
		return false
	}
	if q.OwnerID != 0 && s.OwnerID != q.OwnerID {
		return false
	}
	if q.ModifiedFrom != nil && s.LastModifiedAt.Before(*q.ModifiedFrom) {
		return false
	}
	if q.ModifiedTo != nil && s.LastModifiedAt.After(*q.ModifiedTo) {
		return false
	}
	if q.AuthorName != "" && !strings.Contains(s.AuthorName, q.AuthorName) {
		return false
	}
	return true
}

// Less reports whether a sorts before b in listing order.
func Less(a, b model.Schedule) bool {
	if !a.LastModifiedAt.Equal(b.LastModifiedAt) {
		return a.LastModifiedAt.After(b.LastModifiedAt)
	}
	return a.ID > b.ID
}
