package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/activity-feed/internal/repository"
	"github.com/d60-Lab/activity-feed/internal/service"
	"github.com/d60-Lab/activity-feed/pkg/response"
)

type Handler struct {
	activitySvc service.ActivityService
	feedSvc     service.FeedService
	subSvc      service.SubscriptionService
}

func New(activitySvc service.ActivityService, feedSvc service.FeedService, subSvc service.SubscriptionService) *Handler {
	return &Handler{activitySvc: activitySvc, feedSvc: feedSvc, subSvc: subSvc}
}

// fail 把核心错误翻译成响应码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, repository.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCursor),
		errors.Is(err, service.ErrInvalidActivityType),
		errors.Is(err, service.ErrSubscribeSelf),
		errors.Is(err, service.ErrInvalidWeight):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
