package packets

import "github.com/Nixie-Tech-LLC/memo/internal/http/api"

type CreateScheduleRequest struct {
	Content  string      `json:"content" binding:"required,min=1,max=512"`
	StartAt  *api.Minute `json:"startAt" binding:"required"`
	EndAt    *api.Minute `json:"endAt" binding:"required"`
	IsPublic *bool       `json:"isPublic" binding:"required"`
}

// fields left out keep their current value
type UpdateScheduleRequest struct {
	Content  *string     `json:"content" binding:"omitempty,min=1,max=512"`
	StartAt  *api.Minute `json:"startAt"`
	EndAt    *api.Minute `json:"endAt"`
	IsPublic *bool       `json:"isPublic"`
}

type CollaboratorsRequest struct {
	UserIDs []int `json:"userIds" binding:"required,min=1,dive,gt=0"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=512"`
}
