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

// Package monitor provides liveness monitoring for the bot process.
// monitor 包提供 Bot 进程的存活监控功能。
//
// This package provides:
// 此包提供：
// - Periodic liveness checks / 周期性存活检查
// - Manual stop marking / 手动停止标记
// - Consecutive failure detection / 连续失败检测
// - Lifecycle event generation / 生命周期事件生成
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType represents the type of bot lifecycle event
// EventType 表示 Bot 生命周期事件类型
type EventType string

const (
	EventStarted           EventType = "started"
	EventStopped           EventType = "stopped"
	EventCrashed           EventType = "crashed"
	EventRestarted         EventType = "restarted"
	EventRestartSuppressed EventType = "restart-suppressed"
)

// Event represents a bot lifecycle event
// Event 表示 Bot 生命周期事件
type Event struct {
	Type      EventType              `json:"type"`
	PID       int                    `json:"pid"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details"`
}

// EventHandler is called when lifecycle events occur
// EventHandler 在生命周期事件发生时被调用
type EventHandler func(event *Event)

// CrashHandler is called when a bot crash is detected
// CrashHandler 在检测到 Bot 崩溃时被调用
type CrashHandler func(state *TrackedBot)

// TrackedBot represents the bot process being watched
// TrackedBot 表示被监控的 Bot 进程
type TrackedBot struct {
	PID              int       `json:"pid"`
	ManuallyStopped  bool      `json:"manually_stopped"`  // 是否手动停止 / Whether manually stopped
	ConsecutiveFails int       `json:"consecutive_fails"` // 连续检查失败次数 / Consecutive check failures
	LastCheck        time.Time `json:"last_check"`
}

// AliveFunc reports whether a PID is alive; injectable for tests
// AliveFunc 报告 PID 是否存活；可注入以便测试
type AliveFunc func(pid int) bool

// Monitor watches the bot process and detects crashes.
// A crash is only declared after the liveness check fails
// the configured number of consecutive times.
// Monitor 监控 Bot 进程并检测崩溃。
// 只有当存活检查连续失败达到配置的次数后才判定为崩溃。
type Monitor struct {
	bot           *TrackedBot
	interval      time.Duration
	failThreshold int
	alive         AliveFunc
	eventHandler  EventHandler
	crashHandler  CrashHandler
	log           *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	running       bool
	mu            sync.RWMutex
}

// NewMonitor creates a new Monitor instance
// NewMonitor 创建一个新的 Monitor 实例
func NewMonitor(interval time.Duration, failThreshold int, alive AliveFunc, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		interval:      interval,
		failThreshold: failThreshold,
		alive:         alive,
		log:           log.Named("monitor"),
	}
}

// SetEventHandler sets the event handler callback
// SetEventHandler 设置事件处理回调
func (m *Monitor) SetEventHandler(handler EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventHandler = handler
}

// SetCrashHandler sets the crash handler callback
// SetCrashHandler 设置崩溃处理回调
func (m *Monitor) SetCrashHandler(handler CrashHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crashHandler = handler
}

// Start starts the monitoring loop
// Start 启动监控循环
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.running = true
	m.mu.Unlock()

	m.log.Info("monitor started", zap.Duration("interval", m.interval))

	go m.loop()

	return nil
}

// Stop stops the monitoring loop
// Stop 停止监控循环
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	if m.cancel != nil {
		m.cancel()
	}
	m.running = false

	m.log.Info("monitor stopped")
	return nil
}

// loop runs the periodic liveness checks
// loop 运行周期性存活检查
func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check performs a single liveness check of the tracked bot
// Check 对被跟踪的 Bot 执行一次存活检查
func (m *Monitor) Check() {
	m.mu.Lock()
	defer m.mu.Unlock()

	bot := m.bot
	if bot == nil || bot.ManuallyStopped {
		return
	}

	alive := m.alive(bot.PID)
	bot.LastCheck = time.Now()

	if alive {
		bot.ConsecutiveFails = 0
		return
	}

	bot.ConsecutiveFails++
	m.log.Warn("bot liveness check failed",
		zap.Int("pid", bot.PID),
		zap.Int("consecutive_fails", bot.ConsecutiveFails))

	if bot.ConsecutiveFails < m.failThreshold {
		return
	}

	m.notifyEvent(&Event{
		Type:      EventCrashed,
		PID:       bot.PID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"consecutive_fails": bot.ConsecutiveFails,
		},
	})

	if m.crashHandler != nil {
		// Copy so the handler never races with the check loop
		// 复制以避免处理器与检查循环发生竞态
		botCopy := *bot
		go m.crashHandler(&botCopy)
	}

	// Untrack until a restart re-tracks, so one crash fires one handler
	// 取消跟踪直到重启后重新跟踪，确保一次崩溃只触发一次处理器
	m.bot = nil
}

// notifyEvent notifies the event handler
// notifyEvent 通知事件处理器
func (m *Monitor) notifyEvent(event *Event) {
	if m.eventHandler != nil {
		go m.eventHandler(event)
	}
}

// Track starts watching a bot process
// Track 开始监控一个 Bot 进程
func (m *Monitor) Track(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bot = &TrackedBot{
		PID:       pid,
		LastCheck: time.Now(),
	}
	m.log.Info("tracking bot", zap.Int("pid", pid))

	m.notifyEvent(&Event{
		Type:      EventStarted,
		PID:       pid,
		Timestamp: time.Now(),
		Details:   map[string]interface{}{},
	})
}

// TrackRestart resumes watching after an automatic restart, emitting a
// restarted event instead of a started one
// TrackRestart 在自动重启后恢复监控，发出 restarted 事件而非 started 事件
func (m *Monitor) TrackRestart(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bot = &TrackedBot{
		PID:       pid,
		LastCheck: time.Now(),
	}
	m.log.Info("tracking restarted bot", zap.Int("pid", pid))

	m.notifyEvent(&Event{
		Type:      EventRestarted,
		PID:       pid,
		Timestamp: time.Now(),
		Details:   map[string]interface{}{},
	})
}

// Untrack stops watching the bot process
// Untrack 停止监控 Bot 进程
func (m *Monitor) Untrack() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bot == nil {
		return
	}

	m.notifyEvent(&Event{
		Type:      EventStopped,
		PID:       m.bot.PID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"manually_stopped": m.bot.ManuallyStopped,
		},
	})

	m.log.Info("untracked bot", zap.Int("pid", m.bot.PID))
	m.bot = nil
}

// MarkManuallyStopped marks the bot as manually stopped so the
// crash handler is not fired for an operator-initiated stop
// MarkManuallyStopped 将 Bot 标记为手动停止，
// 避免操作员主动停止时触发崩溃处理器
func (m *Monitor) MarkManuallyStopped() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bot != nil {
		m.bot.ManuallyStopped = true
		m.log.Info("marked bot as manually stopped", zap.Int("pid", m.bot.PID))
	}
}

// Tracked returns a copy of the tracked bot state, or nil
// Tracked 返回被跟踪 Bot 状态的副本，或 nil
func (m *Monitor) Tracked() *TrackedBot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.bot == nil {
		return nil
	}
	botCopy := *m.bot
	return &botCopy
}
