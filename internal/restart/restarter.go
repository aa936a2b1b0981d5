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

// Package restart provides automatic bot restart functionality.
// restart 包提供 Bot 自动重启功能。
//
// This package provides:
// 此包提供：
// - Automatic restart on bot crash / Bot 崩溃时自动重启
// - Restart count limiting within a time window / 时间窗口内的重启次数限制
// - Cooldown period management / 冷却时间管理
// - Restart history tracking / 重启历史跟踪
package restart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vintedbot/botkeeper/internal/config"
	"github.com/vintedbot/botkeeper/internal/process"
	"go.uber.org/zap"
)

// ErrRestartSuppressed indicates the window limit or cooldown forbids a restart
// ErrRestartSuppressed 表示窗口限制或冷却期禁止重启
var ErrRestartSuppressed = errors.New("restart: limit reached or in cooldown")

// Starter launches the bot process; satisfied by process.Manager
// Starter 启动 Bot 进程；由 process.Manager 实现
type Starter interface {
	Start(ctx context.Context) (*process.Info, error)
}

// History tracks bot restart history
// History 跟踪 Bot 重启历史
type History struct {
	RestartCount  int         `json:"restart_count"`
	LastRestart   time.Time   `json:"last_restart"`
	CooldownUntil time.Time   `json:"cooldown_until"`
	RestartTimes  []time.Time `json:"restart_times"` // 重启时间列表 / List of restart times
}

// Callback is called when a restart attempt completes
// Callback 在重启尝试完成时被调用
type Callback func(success bool, err error)

// Restarter handles automatic bot restart on crash.
// Restarts are limited per time window; once the limit is hit the
// Restarter enters a cooldown during which crashes are not acted on.
// Restarter 处理 Bot 崩溃时的自动重启。
// 重启在时间窗口内受次数限制；达到上限后进入冷却期，
// 冷却期内不响应崩溃。
type Restarter struct {
	starter  Starter
	cfg      config.RestartConfig
	history  History
	callback Callback
	log      *zap.Logger

	// now is injectable for window and cooldown tests
	// now 可注入以便测试窗口与冷却逻辑
	now func() time.Time

	mu sync.RWMutex
}

// NewRestarter creates a new Restarter instance
// NewRestarter 创建一个新的 Restarter 实例
func NewRestarter(starter Starter, cfg config.RestartConfig, log *zap.Logger) *Restarter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Restarter{
		starter: starter,
		cfg:     cfg,
		log:     log.Named("restart"),
		now:     time.Now,
	}
}

// SetCallback sets the restart callback
// SetCallback 设置重启回调
func (r *Restarter) SetCallback(callback Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callback = callback
}

// OnCrash handles a bot crash event: wait the restart delay, then
// restart unless the window limit or cooldown forbids it
// OnCrash 处理 Bot 崩溃事件：等待重启延迟后重启，
// 除非窗口限制或冷却期禁止
func (r *Restarter) OnCrash(ctx context.Context) error {
	r.mu.RLock()
	cfg := r.cfg
	r.mu.RUnlock()

	if !cfg.Enabled {
		r.log.Info("auto restart disabled, skipping")
		return nil
	}

	if !r.ShouldRestart() {
		r.log.Warn("restart limit reached or in cooldown, skipping")
		return ErrRestartSuppressed
	}

	r.log.Info("waiting before restart", zap.Duration("delay", cfg.Delay))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Delay):
	}

	return r.DoRestart(ctx)
}

// ShouldRestart checks window limits and cooldown state
// ShouldRestart 检查窗口限制与冷却状态
func (r *Restarter) ShouldRestart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.cfg.Enabled {
		return false
	}

	now := r.now()

	// In cooldown / 冷却中
	if now.Before(r.history.CooldownUntil) {
		return false
	}

	// Cooldown elapsed: restart fresh / 冷却已过：重新计数
	if !r.history.CooldownUntil.IsZero() && now.After(r.history.CooldownUntil) {
		r.resetHistoryLocked()
		return true
	}

	// Count restarts within the window / 计算窗口内的重启次数
	windowStart := now.Add(-r.cfg.Window)
	restartsInWindow := 0
	for _, t := range r.history.RestartTimes {
		if t.After(windowStart) {
			restartsInWindow++
		}
	}

	if restartsInWindow >= r.cfg.MaxRestarts {
		r.history.CooldownUntil = now.Add(r.cfg.Cooldown)
		r.log.Warn("max restarts reached, entering cooldown",
			zap.Int("max_restarts", r.cfg.MaxRestarts),
			zap.Time("cooldown_until", r.history.CooldownUntil))
		return false
	}

	return true
}

// DoRestart performs the actual restart attempt
// DoRestart 执行实际的重启尝试
func (r *Restarter) DoRestart(ctx context.Context) error {
	r.mu.RLock()
	callback := r.callback
	r.mu.RUnlock()

	r.log.Info("restarting bot")

	_, err := r.starter.Start(ctx)
	if err != nil {
		if errors.Is(err, process.ErrAlreadyRunning) {
			// Someone else brought the bot back; success
			// 其他途径已拉起 Bot；视为成功
			r.log.Info("bot already running, treating as success")
			if callback != nil {
				callback(true, nil)
			}
			return nil
		}
		r.recordRestart()
		r.log.Error("restart failed", zap.Error(err))
		if callback != nil {
			callback(false, err)
		}
		return err
	}

	r.recordRestart()
	r.log.Info("bot restarted")
	if callback != nil {
		callback(true, nil)
	}

	return nil
}

// recordRestart records a restart attempt in history
// recordRestart 在历史中记录一次重启尝试
func (r *Restarter) recordRestart() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.history.RestartCount++
	r.history.LastRestart = now
	r.history.RestartTimes = append(r.history.RestartTimes, now)

	// Drop restart times outside the window / 丢弃窗口外的重启时间
	windowStart := now.Add(-r.cfg.Window)
	var kept []time.Time
	for _, t := range r.history.RestartTimes {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	r.history.RestartTimes = kept

	r.log.Info("recorded restart", zap.Int("count_in_window", len(kept)))
}

// Reset resets the restart history
// Reset 重置重启历史
func (r *Restarter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetHistoryLocked()
}

// resetHistoryLocked resets history (must be called with lock held)
// resetHistoryLocked 重置历史（必须在持有锁的情况下调用）
func (r *Restarter) resetHistoryLocked() {
	r.history.RestartCount = 0
	r.history.RestartTimes = nil
	r.history.CooldownUntil = time.Time{}
}

// GetHistory returns a copy of the restart history
// GetHistory 返回重启历史的副本
func (r *Restarter) GetHistory() History {
	r.mu.RLock()
	defer r.mu.RUnlock()

	historyCopy := r.history
	historyCopy.RestartTimes = make([]time.Time, len(r.history.RestartTimes))
	copy(historyCopy.RestartTimes, r.history.RestartTimes)
	return historyCopy
}

// IsInCooldown reports whether the Restarter is in cooldown
// IsInCooldown 报告 Restarter 是否处于冷却期
func (r *Restarter) IsInCooldown() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now().Before(r.history.CooldownUntil)
}

// IsEnabled reports whether auto restart is enabled
// IsEnabled 报告是否启用了自动重启
func (r *Restarter) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Enabled
}
