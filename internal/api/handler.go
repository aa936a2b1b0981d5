/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP control surface for botkeeper's supervise mode.
// api 包提供 botkeeper 托管模式的 HTTP 控制接口。
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vintedbot/botkeeper/internal/journal"
	"github.com/vintedbot/botkeeper/internal/process"
	"github.com/vintedbot/botkeeper/internal/restart"
)

// Controller drives bot lifecycle operations on behalf of the API.
// In supervise mode the Keeper implements it, so an operator stop or
// restart is coordinated with the liveness monitor and the journal
// instead of being misread as a crash. process.Manager satisfies it
// directly for uncoordinated use.
// Controller 代表 API 驱动 Bot 生命周期操作。托管模式下由 Keeper 实现，
// 使操作员的停止或重启与存活监控和运行日志协同，而不会被误判为崩溃。
// process.Manager 直接满足该接口，用于无协同的场景。
type Controller interface {
	Status() (*process.Info, error)
	Stop(ctx context.Context) error
	Restart(ctx context.Context) (*process.Info, error)
}

// Handler provides HTTP handlers for bot status and control operations.
// Handler 提供 Bot 状态与控制操作的 HTTP 处理器。
type Handler struct {
	control   Controller
	repo      *journal.Repository
	restarter *restart.Restarter
}

// NewHandler creates a new Handler instance. repo and restarter may be
// nil when the journal or auto restart is disabled.
// NewHandler 创建一个新的 Handler 实例。当运行日志或自动重启被禁用时，
// repo 和 restarter 可以为 nil。
func NewHandler(control Controller, repo *journal.Repository, restarter *restart.Restarter) *Handler {
	return &Handler{
		control:   control,
		repo:      repo,
		restarter: restarter,
	}
}

// ==================== Request/Response Types 请求/响应类型 ====================

// StatusResponse represents the response for the bot status endpoint.
// StatusResponse 表示 Bot 状态接口的响应。
type StatusResponse struct {
	ErrorMsg string        `json:"error_msg"`
	Data     *process.Info `json:"data"`
}

// ListRunsRequest represents the request for listing run records.
// ListRunsRequest 表示获取运行记录列表的请求。
type ListRunsRequest struct {
	Current   int                `json:"current" form:"current" binding:"min=1"`
	Size      int                `json:"size" form:"size" binding:"min=1,max=100"`
	Status    journal.RunStatus  `json:"status" form:"status"`
	Trigger   journal.RunTrigger `json:"trigger" form:"trigger"`
	StartTime string             `json:"start_time" form:"start_time"`
	EndTime   string             `json:"end_time" form:"end_time"`
}

// ListRunsResponse represents the response for listing run records.
// ListRunsResponse 表示获取运行记录列表的响应。
type ListRunsResponse struct {
	ErrorMsg string `json:"error_msg"`
	Data     *struct {
		Total int64                `json:"total"`
		Runs  []*journal.RunRecord `json:"runs"`
	} `json:"data"`
}

// ListEventsResponse represents the response for listing run events.
// ListEventsResponse 表示获取运行事件列表的响应。
type ListEventsResponse struct {
	ErrorMsg string              `json:"error_msg"`
	Data     []*journal.RunEvent `json:"data"`
}

// ControlResponse represents the response for stop and restart requests.
// ControlResponse 表示停止与重启请求的响应。
type ControlResponse struct {
	ErrorMsg string        `json:"error_msg"`
	Data     *process.Info `json:"data"`
}

// ==================== Status Handlers 状态处理器 ====================

// Healthz handles GET /healthz - liveness probe for botkeeper itself.
// Healthz 处理 GET /healthz - botkeeper 自身的存活探针。
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /api/v1/status - reports the bot process state.
// Status 处理 GET /api/v1/status - 报告 Bot 进程状态。
// @Tags status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/v1/status [get]
func (h *Handler) Status(c *gin.Context) {
	info, err := h.control.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, StatusResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Data: info})
}

// ==================== Run History Handlers 运行历史处理器 ====================

// ListRuns handles GET /api/v1/runs - lists run records with filtering and pagination.
// ListRuns 处理 GET /api/v1/runs - 获取运行记录列表（支持过滤和分页）。
// @Tags runs
// @Param request query ListRunsRequest true "查询参数"
// @Produce json
// @Success 200 {object} ListRunsResponse
// @Router /api/v1/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, ListRunsResponse{ErrorMsg: "run journal is disabled / 运行日志已禁用"})
		return
	}

	req := &ListRunsRequest{Current: 1, Size: 20}
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, ListRunsResponse{ErrorMsg: err.Error()})
		return
	}

	// Parse time filters - 解析时间过滤条件
	var startTime, endTime *time.Time
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ListRunsResponse{
				ErrorMsg: "无效的开始时间格式，请使用 RFC3339 格式 / Invalid start_time format, use RFC3339",
			})
			return
		}
		startTime = &t
	}
	if req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ListRunsResponse{
				ErrorMsg: "无效的结束时间格式，请使用 RFC3339 格式 / Invalid end_time format, use RFC3339",
			})
			return
		}
		endTime = &t
	}

	filter := &journal.RunFilter{
		Status:    req.Status,
		Trigger:   req.Trigger,
		StartTime: startTime,
		EndTime:   endTime,
		Page:      req.Current,
		PageSize:  req.Size,
	}

	runs, total, err := h.repo.ListRuns(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ListRunsResponse{ErrorMsg: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ListRunsResponse{
		Data: &struct {
			Total int64                `json:"total"`
			Runs  []*journal.RunRecord `json:"runs"`
		}{
			Total: total,
			Runs:  runs,
		},
	})
}

// ListRunEvents handles GET /api/v1/runs/:run_id/events - lists the events of a run.
// ListRunEvents 处理 GET /api/v1/runs/:run_id/events - 获取一次运行的事件列表。
// @Tags runs
// @Produce json
// @Success 200 {object} ListEventsResponse
// @Router /api/v1/runs/{run_id}/events [get]
func (h *Handler) ListRunEvents(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, ListEventsResponse{ErrorMsg: "run journal is disabled / 运行日志已禁用"})
		return
	}

	runID := c.Param("run_id")
	if _, err := h.repo.GetRunByRunID(c.Request.Context(), runID); err != nil {
		if errors.Is(err, journal.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, ListEventsResponse{ErrorMsg: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ListEventsResponse{ErrorMsg: err.Error()})
		return
	}

	events, err := h.repo.ListEvents(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ListEventsResponse{ErrorMsg: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ListEventsResponse{Data: events})
}

// ==================== Control Handlers 控制处理器 ====================

// StopBot handles POST /api/v1/stop - stops the bot process.
// StopBot 处理 POST /api/v1/stop - 停止 Bot 进程。
// @Tags control
// @Produce json
// @Success 200 {object} ControlResponse
// @Router /api/v1/stop [post]
func (h *Handler) StopBot(c *gin.Context) {
	if err := h.control.Stop(c.Request.Context()); err != nil {
		if errors.Is(err, process.ErrNotRunning) {
			c.JSON(http.StatusConflict, ControlResponse{ErrorMsg: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ControlResponse{ErrorMsg: err.Error()})
		return
	}

	info, err := h.control.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ControlResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ControlResponse{Data: info})
}

// RestartBot handles POST /api/v1/restart - restarts the bot process.
// RestartBot 处理 POST /api/v1/restart - 重启 Bot 进程。
// @Tags control
// @Produce json
// @Success 200 {object} ControlResponse
// @Router /api/v1/restart [post]
func (h *Handler) RestartBot(c *gin.Context) {
	info, err := h.control.Restart(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ControlResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ControlResponse{Data: info})
}
