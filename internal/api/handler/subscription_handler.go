package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/activity-feed/pkg/response"
)

type subscribeRequest struct {
	SubscriberID string  `json:"subscriber_id" binding:"required"`
	PublisherID  string  `json:"publisher_id" binding:"required"`
	Weight       float64 `json:"weight"`
}

// Subscribe 建立/恢复订阅（幂等 upsert）
// @Summary 订阅发布者
// @Tags 订阅
// @Accept json
// @Produce json
// @Param request body subscribeRequest true "订阅信息"
// @Success 200 {object} response.Response{data=model.FeedSubscription}
// @Failure 400 {object} response.Response
// @Router /api/v1/subscriptions [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sub, err := h.subSvc.Subscribe(c.Request.Context(), req.SubscriberID, req.PublisherID, req.Weight)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}

type unsubscribeRequest struct {
	SubscriberID string `json:"subscriber_id" binding:"required"`
	PublisherID  string `json:"publisher_id" binding:"required"`
}

// Unsubscribe 取消订阅（不存在也不报错）
// @Summary 取消订阅
// @Tags 订阅
// @Accept json
// @Produce json
// @Param request body unsubscribeRequest true "取消订阅信息"
// @Success 200 {object} response.Response
// @Router /api/v1/subscriptions/unsubscribe [post]
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.subSvc.Unsubscribe(c.Request.Context(), req.SubscriberID, req.PublisherID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
