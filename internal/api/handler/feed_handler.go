package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/activity-feed/internal/model"
	"github.com/d60-Lab/activity-feed/internal/service"
	"github.com/d60-Lab/activity-feed/pkg/response"
)

// GetFeed 排序分页读取收件箱
// @Summary 读取 Feed
// @Tags Feed
// @Param user_id path string true "用户ID"
// @Param cursor query string false "上一页游标"
// @Param limit query int false "每页数量" default(20)
// @Param include_read query bool false "包含已读" default(false)
// @Param types query string false "活动类型过滤，逗号分隔"
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 400 {object} response.Response
// @Router /api/v1/users/{user_id}/feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	includeRead, _ := strconv.ParseBool(c.DefaultQuery("include_read", "false"))

	q := service.FeedQuery{
		Cursor:      c.Query("cursor"),
		Limit:       limit,
		IncludeRead: includeRead,
	}
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Types = append(q.Types, model.ActivityType(t))
			}
		}
	}

	page, err := h.feedSvc.GenerateFeed(c.Request.Context(), userID, q)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// MarkFeedItemAsRead 标记单条已读（重复标记是 no-op）
// @Summary 标记已读
// @Tags Feed
// @Param user_id path string true "用户ID"
// @Param item_id path string true "Feed 条目ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id}/feed/{item_id}/read [post]
func (h *Handler) MarkFeedItemAsRead(c *gin.Context) {
	if err := h.feedSvc.MarkAsRead(c.Request.Context(), c.Param("user_id"), c.Param("item_id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
