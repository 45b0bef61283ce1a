package endpoints

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api/schedules/packets"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

// GET /schedules/:id/comments
func (s *ScheduleController) listComments(ctx *gin.Context, actor *auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Schedule(ctx.Request.Context(), actor, scheduleID, schedule.View); err != nil {
		return nil, err
	}

	list, err := s.store.ListComments(ctx.Request.Context(), scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return packets.Comments(list), nil
}

// POST /schedules/s/:id/comments
func (s *ScheduleController) createComment(ctx *gin.Context, id auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Schedule(ctx.Request.Context(), &id, scheduleID, schedule.CommentCreate); err != nil {
		return nil, err
	}

	var request packets.CommentRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}
	if err := checkContent(request.Content); err != nil {
		return nil, err
	}

	c := model.Comment{ScheduleID: scheduleID, AuthorID: id.UserID, Content: request.Content}
	if err := s.store.CreateComment(ctx.Request.Context(), &c); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("schedule not found")
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.notifier.CommentCreated(scheduleID, c.ID, id.UserID)
	return api.Created(packets.Comment(c)), nil
}

// PATCH /comments/:id
func (s *ScheduleController) updateComment(ctx *gin.Context, id auth.Identity) (any, error) {
	commentID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	c, err := s.authz.Comment(ctx.Request.Context(), &id, commentID, schedule.CommentModify)
	if err != nil {
		return nil, err
	}

	var request packets.CommentRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}
	if err := checkContent(request.Content); err != nil {
		return nil, err
	}

	c.Content = request.Content
	if err := s.store.UpdateComment(ctx.Request.Context(), c); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	return packets.Comment(*c), nil
}

// DELETE /comments/:id
func (s *ScheduleController) deleteComment(ctx *gin.Context, id auth.Identity) (any, error) {
	commentID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Comment(ctx.Request.Context(), &id, commentID, schedule.CommentDelete); err != nil {
		return nil, err
	}

	if err := s.store.DeleteComment(ctx.Request.Context(), commentID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil, nil
}
