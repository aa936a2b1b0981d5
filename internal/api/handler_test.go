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

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vintedbot/botkeeper/internal/config"
	"github.com/vintedbot/botkeeper/internal/journal"
	"github.com/vintedbot/botkeeper/internal/process"
	"go.uber.org/zap"
)

// newTestRouter builds a router over an empty bot home and a temp journal
// newTestRouter 基于空的 Bot 主目录和临时运行日志构建路由
func newTestRouter(t *testing.T) (*gin.Engine, *journal.Repository) {
	t.Helper()
	home := t.TempDir()

	cfg := &config.Config{}
	cfg.Bot.Home = home
	cfg.Bot.VenvDir = filepath.Join(home, "venv")
	cfg.Bot.Entry = "main.py"
	cfg.Bot.EnvFile = filepath.Join(home, ".env")
	cfg.Bot.LogFile = filepath.Join(home, "bot.log")
	// A pattern no live process can match / 任何存活进程都不会匹配的模式
	cfg.Bot.Pattern = fmt.Sprintf("botkeeper-api-test-%s", filepath.Base(home))
	cfg.Bot.PIDFile = filepath.Join(home, "botkeeper.pid")

	manager, err := process.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)

	db, err := journal.OpenDB(filepath.Join(home, "journal.db"))
	require.NoError(t, err)
	repo := journal.NewRepository(db)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(manager, repo, nil)
	r.GET("/healthz", handler.Healthz)
	r.GET("/api/v1/status", handler.Status)
	r.GET("/api/v1/runs", handler.ListRuns)
	r.GET("/api/v1/runs/:run_id/events", handler.ListRunEvents)
	r.POST("/api/v1/stop", handler.StopBot)

	return r, repo
}

// TestHealthz tests the liveness probe
// TestHealthz 测试存活探针
func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// TestStatusStopped tests the status report with no bot running
// TestStatusStopped 测试没有 Bot 运行时的状态报告
func TestStatusStopped(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, process.StatusStopped, resp.Data.Status)
	assert.Equal(t, 0, resp.Data.PID)
}

// TestStopNotRunning tests that stopping a stopped bot returns a conflict
// TestStopNotRunning 测试停止未运行的 Bot 返回冲突
func TestStopNotRunning(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/stop", nil))

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp ControlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.ErrorMsg, "not running")
}

// TestListRuns tests run history listing with filters
// TestListRuns 测试带过滤条件的运行历史列表
func TestListRuns(t *testing.T) {
	r, repo := newTestRouter(t)
	ctx := context.Background()

	manualRun, err := repo.OpenRun(ctx, 100, journal.TriggerManual)
	require.NoError(t, err)
	require.NoError(t, repo.CloseRun(ctx, manualRun.RunID, journal.RunStatusStopped, "done"))
	_, err = repo.OpenRun(ctx, 200, journal.TriggerAuto)
	require.NoError(t, err)

	// Unfiltered list returns both / 无过滤条件返回两条
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, int64(2), resp.Data.Total)

	// Trigger filter narrows to one / 触发方式过滤只剩一条
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?trigger=manual", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp = ListRunsResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, int64(1), resp.Data.Total)
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, manualRun.RunID, resp.Data.Runs[0].RunID)

	// Bad time filter is rejected / 无效时间过滤被拒绝
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?start_time=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestListRunEvents tests event listing and unknown run handling
// TestListRunEvents 测试事件列表与未知运行的处理
func TestListRunEvents(t *testing.T) {
	r, repo := newTestRouter(t)
	ctx := context.Background()

	run, err := repo.OpenRun(ctx, 100, journal.TriggerManual)
	require.NoError(t, err)
	require.NoError(t, repo.AppendEvent(ctx, &journal.RunEvent{
		RunID: run.RunID,
		Type:  "started",
		PID:   100,
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+run.RunID+"/events", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "started", resp.Data[0].Type)

	// Unknown run returns 404 / 未知运行返回 404
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs/no-such-run/events", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// fakeController records lifecycle calls made by the handlers
// fakeController 记录处理器发起的生命周期调用
type fakeController struct {
	stopCalls    int
	restartCalls int
}

func (f *fakeController) Status() (*process.Info, error) {
	return &process.Info{Status: process.StatusStopped}, nil
}

func (f *fakeController) Stop(ctx context.Context) error {
	f.stopCalls++
	return nil
}

func (f *fakeController) Restart(ctx context.Context) (*process.Info, error) {
	f.restartCalls++
	return &process.Info{PID: 4242, Status: process.StatusRunning}, nil
}

// TestControlDelegation tests that stop and restart go through the
// injected controller rather than straight to the process layer, so a
// supervising Keeper can coordinate the monitor and the journal
// TestControlDelegation 测试停止与重启经由注入的控制器而非直接到达
// 进程层，使托管的 Keeper 能够协同监控器与运行日志
func TestControlDelegation(t *testing.T) {
	ctrl := &fakeController{}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(ctrl, nil, nil)
	r.POST("/api/v1/stop", handler.StopBot)
	r.POST("/api/v1/restart", handler.RestartBot)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/stop", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ctrl.stopCalls)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/restart", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ctrl.restartCalls)

	var resp ControlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, 4242, resp.Data.PID)
}

// TestJournalDisabled tests the journal endpoints without a repository
// TestJournalDisabled 测试没有仓库时的运行日志接口
func TestJournalDisabled(t *testing.T) {
	home := t.TempDir()
	cfg := &config.Config{}
	cfg.Bot.Home = home
	cfg.Bot.Pattern = "botkeeper-disabled-test"
	cfg.Bot.PIDFile = filepath.Join(home, "botkeeper.pid")

	manager, err := process.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(manager, nil, nil)
	r.GET("/api/v1/runs", handler.ListRuns)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
