package endpoints

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api/schedules/packets"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
	"github.com/Nixie-Tech-LLC/memo/internal/notify"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

type ScheduleController struct {
	store    db.Store
	engine   *schedule.Engine
	authz    *schedule.Authorizer
	limiter  *schedule.Limiter
	notifier notify.Publisher
}

func NewScheduleController(store db.Store, engine *schedule.Engine, notifier notify.Publisher) *ScheduleController {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ScheduleController{
		store:    store,
		engine:   engine,
		authz:    schedule.NewAuthorizer(store),
		limiter:  schedule.NewLimiter(store),
		notifier: notifier,
	}
}

// PublicModule mounts the read endpoints that work without a token. It must be
// mounted on a group with optional identity.
func PublicModule(ctl *ScheduleController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/schedules", ctl.listPublic)
		c.OPTIONAL_GET("/schedules/:id", ctl.getSchedule)
		c.OPTIONAL_GET("/schedules/:id/comments", ctl.listComments)
	})
}

// OwnerModule mounts the caller-scoped schedule endpoints (token required).
func OwnerModule(ctl *ScheduleController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedules/s", ctl.listMine)
		c.POST("/schedules/s", ctl.createSchedule)
		c.PATCH("/schedules/s/:id", ctl.updateSchedule)
		c.DELETE("/schedules/s/:id", ctl.deleteSchedule)

		// schedule <-> collaborator
		c.GET("/schedules/s/:id/collaborators", ctl.listCollaborators)
		c.POST("/schedules/s/:id/collaborators", ctl.assignCollaborators)
		c.DELETE("/schedules/s/:id/collaborators", ctl.unassignCollaborators)

		c.POST("/schedules/s/:id/comments", ctl.createComment)
	})
}

// CommentModule mounts comment edit endpoints (token required).
func CommentModule(ctl *ScheduleController) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PATCH("/comments/:id", ctl.updateComment)
		c.DELETE("/comments/:id", ctl.deleteComment)
	})
}

func bindFilter(ctx *gin.Context) (schedule.Filter, error) {
	var params schedule.FilterParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		return schedule.Filter{}, apperr.Validation("invalid query parameters", nil)
	}
	return schedule.BuildFilter(params)
}

// GET /schedules
func (s *ScheduleController) listPublic(ctx *gin.Context) (any, error) {
	f, err := bindFilter(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.engine.ListPublic(ctx.Request.Context(), f)
	if err != nil {
		return nil, err
	}
	return packets.Page(page), nil
}

// GET /schedules/s
func (s *ScheduleController) listMine(ctx *gin.Context, id auth.Identity) (any, error) {
	f, err := bindFilter(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.engine.ListForOwner(ctx.Request.Context(), id.UserID, f)
	if err != nil {
		return nil, err
	}
	return packets.Page(page), nil
}

// GET /schedules/:id
func (s *ScheduleController) getSchedule(ctx *gin.Context, actor *auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	access, err := s.authz.Schedule(ctx.Request.Context(), actor, scheduleID, schedule.View)
	if err != nil {
		return nil, err
	}

	collaborators, err := s.store.ListCollaborators(ctx.Request.Context(), scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	response := packets.Schedule(access.Schedule)
	response.Collaborators = packets.Users(collaborators)
	return response, nil
}

// POST /schedules/s
func (s *ScheduleController) createSchedule(ctx *gin.Context, id auth.Identity) (any, error) {
	var request packets.CreateScheduleRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}
	if err := checkContent(request.Content); err != nil {
		return nil, err
	}
	if err := checkRange(request.StartAt.Time, request.EndAt.Time); err != nil {
		return nil, err
	}

	sc := model.Schedule{
		OwnerID:  id.UserID,
		Content:  request.Content,
		StartAt:  request.StartAt.Time,
		EndAt:    request.EndAt.Time,
		IsPublic: *request.IsPublic,
	}
	if err := s.store.CreateSchedule(ctx.Request.Context(), &sc); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	log.Info().Int("schedule_id", sc.ID).Int("owner_id", sc.OwnerID).Msg("schedule created")
	return api.Created(packets.Schedule(sc)), nil
}

// PATCH /schedules/s/:id
func (s *ScheduleController) updateSchedule(ctx *gin.Context, id auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	access, err := s.authz.Schedule(ctx.Request.Context(), &id, scheduleID, schedule.Modify)
	if err != nil {
		return nil, err
	}

	var request packets.UpdateScheduleRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	sc := access.Schedule
	if request.Content != nil {
		if err := checkContent(*request.Content); err != nil {
			return nil, err
		}
		sc.Content = *request.Content
	}
	if request.StartAt != nil {
		sc.StartAt = request.StartAt.Time
	}
	if request.EndAt != nil {
		sc.EndAt = request.EndAt.Time
	}
	if request.IsPublic != nil {
		sc.IsPublic = *request.IsPublic
	}
	if err := checkRange(sc.StartAt, sc.EndAt); err != nil {
		return nil, err
	}

	if err := s.store.UpdateSchedule(ctx.Request.Context(), &sc); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("schedule not found")
		}
		return nil, fmt.Errorf("update schedule %d: %w", scheduleID, err)
	}
	return packets.Schedule(sc), nil
}

// DELETE /schedules/s/:id
func (s *ScheduleController) deleteSchedule(ctx *gin.Context, id auth.Identity) (any, error) {
	scheduleID, err := api.ParamID(ctx, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Schedule(ctx.Request.Context(), &id, scheduleID, schedule.Delete); err != nil {
		return nil, err
	}

	if err := s.store.DeleteSchedule(ctx.Request.Context(), scheduleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("schedule not found")
		}
		return nil, fmt.Errorf("delete schedule %d: %w", scheduleID, err)
	}

	log.Info().Int("schedule_id", scheduleID).Int("actor_id", id.UserID).Msg("schedule deleted")
	return nil, nil
}

func checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("validation failed", map[string]string{"content": "must not be blank"})
	}
	if len([]rune(content)) > 512 {
		return apperr.Validation("validation failed", map[string]string{"content": "must be at most 512 characters"})
	}
	return nil
}

func checkRange(start, end time.Time) error {
	if start.After(end) {
		return apperr.Validation("validation failed", map[string]string{"endAt": "must not be before startAt"})
	}
	return nil
}
