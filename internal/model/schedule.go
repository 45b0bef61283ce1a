package model

import "time"

// Schedule is a time-boxed memo owned by one user.
type Schedule struct {
	ID             int       `db:"id"`
	OwnerID        int       `db:"owner_id"`
	AuthorName     string    `db:"author_name"`
	Content        string    `db:"content"`
	StartAt        time.Time `db:"start_at"`
	EndAt          time.Time `db:"end_at"`
	IsPublic       bool      `db:"is_public"`
	CreatedAt      time.Time `db:"created_at"`
	LastModifiedAt time.Time `db:"last_modified_at"`
}

// ScheduleUser is a collaborator edge between a schedule and a user.
type ScheduleUser struct {
	ScheduleID int `db:"schedule_id"`
	UserID     int `db:"user_id"`
}
