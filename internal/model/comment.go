package model

import "time"

type Comment struct {
	ID             int       `db:"id"`
	ScheduleID     int       `db:"schedule_id"`
	AuthorID       int       `db:"author_id"`
	AuthorName     string    `db:"author_name"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
	LastModifiedAt time.Time `db:"last_modified_at"`
}
