package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/service"
	"github.com/d60-Lab/activity-feed/pkg/response"
)

type publishTargetRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
}

type publishRequest struct {
	Type     string                 `json:"type" binding:"required"`
	ActorID  string                 `json:"actor_id" binding:"required"`
	Payload  string                 `json:"payload"`
	IsPublic *bool                  `json:"is_public"`
	GroupKey string                 `json:"group_key"`
	Targets  []publishTargetRequest `json:"targets"`
}

// Publish 发布活动（窗口内相似活动合并，提交后异步扇出）
// @Summary 发布活动
// @Tags 活动
// @Accept json
// @Produce json
// @Param request body publishRequest true "活动内容"
// @Success 200 {object} response.Response{data=model.Activity}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/activities [post]
func (h *Handler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	svcReq := service.PublishRequest{
		Type:     model.ActivityType(req.Type),
		ActorID:  req.ActorID,
		Payload:  req.Payload,
		IsPublic: isPublic,
		GroupKey: req.GroupKey,
	}
	for _, t := range req.Targets {
		svcReq.Targets = append(svcReq.Targets, service.PublishTarget{TargetType: t.TargetType, TargetID: t.TargetID})
	}
	act, err := h.activitySvc.Publish(c.Request.Context(), svcReq)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, act)
}

// GetActivity 查询单个活动
// @Summary 查询活动
// @Tags 活动
// @Param id path string true "活动ID"
// @Success 200 {object} response.Response{data=model.Activity}
// @Failure 404 {object} response.Response
// @Router /api/v1/activities/{id} [get]
func (h *Handler) GetActivity(c *gin.Context) {
	act, err := h.activitySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, act)
}

// DeleteActivity 删除活动（级联删除 targets）
// @Summary 删除活动
// @Tags 活动
// @Param id path string true "活动ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/activities/{id} [delete]
func (h *Handler) DeleteActivity(c *gin.Context) {
	if err := h.activitySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListActivitiesByActor 按发布者查询活动
// @Summary 查询发布者的活动
// @Tags 活动
// @Param actor_id path string true "发布者ID"
// @Param limit query int false "数量" default(20)
// @Param offset query int false "偏移" default(0)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/actors/{actor_id}/activities [get]
func (h *Handler) ListActivitiesByActor(c *gin.Context) {
	actorID := c.Param("actor_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.activitySvc.ListByActor(c.Request.Context(), actorID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"limit": limit, "offset": offset, "list": list})
}

// ListActivitiesByTarget 按显式目标查询活动
// @Summary 查询目标相关活动
// @Tags 活动
// @Param target_type path string true "目标类型"
// @Param target_id path string true "目标ID"
// @Param limit query int false "数量" default(20)
// @Param offset query int false "偏移" default(0)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/targets/{target_type}/{target_id}/activities [get]
func (h *Handler) ListActivitiesByTarget(c *gin.Context) {
	targetType := c.Param("target_type")
	targetID := c.Param("target_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.activitySvc.ListByTarget(c.Request.Context(), targetType, targetID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"limit": limit, "offset": offset, "list": list})
}
