package endpoints

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api/schedules/packets"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

// GET /schedules/s/:id/collaborators
func (s *ScheduleController) listCollaborators(ctx *gin.Context, id auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Schedule(ctx.Request.Context(), &id, scheduleID, schedule.View); err != nil {
		return nil, err
	}

	users, err := s.store.ListCollaborators(ctx.Request.Context(), scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	return packets.Users(users), nil
}

// POST /schedules/s/:id/collaborators
func (s *ScheduleController) assignCollaborators(ctx *gin.Context, id auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Schedule(ctx.Request.Context(), &id, scheduleID, schedule.Modify); err != nil {
		return nil, err
	}

	var request packets.CollaboratorsRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	assigned, err := s.limiter.Assign(ctx.Request.Context(), scheduleID, request.UserIDs)
	if err != nil {
		return nil, err
	}
	s.notifier.CollaboratorAssigned(scheduleID, request.UserIDs)
	return api.Created(packets.Users(assigned)), nil
}

// DELETE /schedules/s/:id/collaborators
func (s *ScheduleController) unassignCollaborators(ctx *gin.Context, id auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Schedule(ctx.Request.Context(), &id, scheduleID, schedule.Modify); err != nil {
		return nil, err
	}

	var request packets.CollaboratorsRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	removed, err := s.limiter.Unassign(ctx.Request.Context(), scheduleID, request.UserIDs)
	if err != nil {
		return nil, err
	}
	return packets.UnassignResponse{Removed: removed}, nil
}
