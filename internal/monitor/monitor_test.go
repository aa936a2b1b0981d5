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

package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aliveSwitch is a toggleable AliveFunc for tests
// aliveSwitch 是测试用的可切换 AliveFunc
type aliveSwitch struct {
	mu    sync.Mutex
	alive bool
}

func (a *aliveSwitch) fn(pid int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alive
}

func (a *aliveSwitch) set(alive bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alive = alive
}

// crashRecorder captures crash handler invocations
// crashRecorder 捕获崩溃处理器调用
type crashRecorder struct {
	mu      sync.Mutex
	crashes []*TrackedBot
}

func (c *crashRecorder) handle(state *TrackedBot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crashes = append(c.crashes, state)
}

func (c *crashRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.crashes)
}

func (c *crashRecorder) first() *TrackedBot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crashes[0]
}

// TestMonitorCrashThreshold tests that a crash is only declared after
// the configured number of consecutive failures
// TestMonitorCrashThreshold 测试只有连续失败达到配置次数后才判定崩溃
func TestMonitorCrashThreshold(t *testing.T) {
	alive := &aliveSwitch{alive: true}
	recorder := &crashRecorder{}

	m := NewMonitor(time.Hour, 3, alive.fn, nil)
	m.SetCrashHandler(recorder.handle)
	m.Track(4321)

	// Healthy checks never fire the handler / 健康检查不触发处理器
	m.Check()
	m.Check()
	assert.Equal(t, 0, recorder.count())

	// Two failures stay below the threshold / 两次失败低于阈值
	alive.set(false)
	m.Check()
	m.Check()
	assert.Equal(t, 0, recorder.count())
	require.NotNil(t, m.Tracked())
	assert.Equal(t, 2, m.Tracked().ConsecutiveFails)

	// The third failure declares the crash / 第三次失败判定崩溃
	m.Check()
	assert.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 4321, recorder.first().PID)

	// The bot is untracked, so no repeat crash fires / Bot 已取消跟踪，不会重复触发
	m.Check()
	m.Check()
	m.Check()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, recorder.count())
	assert.Nil(t, m.Tracked())
}

// TestMonitorRecoveryResetsFails tests that one success clears the fail count
// TestMonitorRecoveryResetsFails 测试一次成功清零失败计数
func TestMonitorRecoveryResetsFails(t *testing.T) {
	alive := &aliveSwitch{alive: false}
	recorder := &crashRecorder{}

	m := NewMonitor(time.Hour, 3, alive.fn, nil)
	m.SetCrashHandler(recorder.handle)
	m.Track(4321)

	m.Check()
	m.Check()
	assert.Equal(t, 2, m.Tracked().ConsecutiveFails)

	// Recovery resets the counter / 恢复后计数清零
	alive.set(true)
	m.Check()
	assert.Equal(t, 0, m.Tracked().ConsecutiveFails)

	// Failures must again reach the full threshold / 失败需重新累计到阈值
	alive.set(false)
	m.Check()
	m.Check()
	assert.Equal(t, 0, recorder.count())
}

// TestMonitorManualStop tests that a manual stop suppresses crash detection
// TestMonitorManualStop 测试手动停止会抑制崩溃检测
func TestMonitorManualStop(t *testing.T) {
	alive := &aliveSwitch{alive: false}
	recorder := &crashRecorder{}

	m := NewMonitor(time.Hour, 1, alive.fn, nil)
	m.SetCrashHandler(recorder.handle)
	m.Track(4321)
	m.MarkManuallyStopped()

	m.Check()
	m.Check()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, recorder.count())
}

// TestMonitorEvents tests lifecycle event generation
// TestMonitorEvents 测试生命周期事件生成
func TestMonitorEvents(t *testing.T) {
	alive := &aliveSwitch{alive: true}

	var mu sync.Mutex
	var types []EventType
	m := NewMonitor(time.Hour, 1, alive.fn, nil)
	m.SetEventHandler(func(event *Event) {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, event.Type)
	})

	m.Track(4321)
	m.Untrack()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(types) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, types, EventStarted)
	assert.Contains(t, types, EventStopped)
}

// TestTrackRestartEvent tests that re-tracking after an automatic
// restart emits a restarted event, not a started one
// TestTrackRestartEvent 测试自动重启后重新跟踪
// 会发出 restarted 事件而不是 started 事件
func TestTrackRestartEvent(t *testing.T) {
	alive := &aliveSwitch{alive: true}

	var mu sync.Mutex
	var types []EventType
	m := NewMonitor(time.Hour, 1, alive.fn, nil)
	m.SetEventHandler(func(event *Event) {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, event.Type)
	})

	m.TrackRestart(4321)

	require.NotNil(t, m.Tracked())
	assert.Equal(t, 4321, m.Tracked().PID)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(types) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventRestarted}, types)
}
