package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

type ScheduleResponse struct {
	ID             int           `json:"id"`
	OwnerID        int           `json:"ownerId"`
	AuthorName     string        `json:"authorName"`
	Content        string        `json:"content"`
	StartAt        string        `json:"startAt"`
	EndAt          string        `json:"endAt"`
	IsPublic       bool          `json:"isPublic"`
	CreatedAt      string        `json:"createdAt"`
	LastModifiedAt string        `json:"lastModifiedAt"`
	Collaborators  []UserSummary `json:"collaborators,omitempty"`
}

type UserSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PageResponse struct {
	Items       []ScheduleResponse `json:"items"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
	HasNextPage bool               `json:"hasNextPage"`
}

type UnassignResponse struct {
	Removed int `json:"removed"`
}

type CommentResponse struct {
	ID             int    `json:"id"`
	ScheduleID     int    `json:"scheduleId"`
	AuthorID       int    `json:"authorId"`
	AuthorName     string `json:"authorName"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
	LastModifiedAt string `json:"lastModifiedAt"`
}

func Schedule(s model.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		AuthorName:     s.AuthorName,
		Content:        s.Content,
		StartAt:        api.FormatMinute(s.StartAt),
		EndAt:          api.FormatMinute(s.EndAt),
		IsPublic:       s.IsPublic,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		LastModifiedAt: s.LastModifiedAt.Format(time.RFC3339),
	}
}

func Page(p schedule.Page) PageResponse {
	items := make([]ScheduleResponse, 0, len(p.Items))
	for _, s := range p.Items {
		items = append(items, Schedule(s))
	}
	return PageResponse{Items: items, Page: p.Page, Limit: p.Limit, HasNextPage: p.HasNextPage}
}

func Users(users []model.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Name: u.Name})
	}
	return out
}

func Comment(c model.Comment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		ScheduleID:     c.ScheduleID,
		AuthorID:       c.AuthorID,
		AuthorName:     c.AuthorName,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		LastModifiedAt: c.LastModifiedAt.Format(time.RFC3339),
	}
}

func Comments(list []model.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(list))
	for _, c := range list {
		out = append(out, Comment(c))
	}
	return out
}
