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

package restart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vintedbot/botkeeper/internal/config"
	"github.com/vintedbot/botkeeper/internal/process"
	"pgregory.net/rapid"
)

// fakeStarter counts start attempts and returns a scripted result
// fakeStarter 统计启动尝试并返回预设结果
type fakeStarter struct {
	calls int
	err   error
}

func (f *fakeStarter) Start(ctx context.Context) (*process.Info, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &process.Info{PID: 1000 + f.calls, Status: process.StatusRunning}, nil
}

// testRestartConfig returns a config with a negligible restart delay
// testRestartConfig 返回重启延迟可忽略的配置
func testRestartConfig() config.RestartConfig {
	return config.RestartConfig{
		Enabled:     true,
		Delay:       time.Millisecond,
		MaxRestarts: 3,
		Window:      5 * time.Minute,
		Cooldown:    30 * time.Minute,
	}
}

// TestRestarterDisabled tests that a disabled restarter never starts anything
// TestRestarterDisabled 测试禁用的重启器不会启动任何进程
func TestRestarterDisabled(t *testing.T) {
	starter := &fakeStarter{}
	cfg := testRestartConfig()
	cfg.Enabled = false

	r := NewRestarter(starter, cfg, nil)
	require.NoError(t, r.OnCrash(context.Background()))
	assert.Equal(t, 0, starter.calls)
	assert.False(t, r.ShouldRestart())
}

// TestRestarterRestartsOnCrash tests the basic crash-restart path
// TestRestarterRestartsOnCrash 测试基本的崩溃重启路径
func TestRestarterRestartsOnCrash(t *testing.T) {
	starter := &fakeStarter{}
	r := NewRestarter(starter, testRestartConfig(), nil)

	var gotSuccess bool
	r.SetCallback(func(success bool, err error) { gotSuccess = success })

	require.NoError(t, r.OnCrash(context.Background()))
	assert.Equal(t, 1, starter.calls)
	assert.True(t, gotSuccess)

	history := r.GetHistory()
	assert.Equal(t, 1, history.RestartCount)
	assert.Len(t, history.RestartTimes, 1)
}

// TestRestarterAlreadyRunning tests that ErrAlreadyRunning counts as success
// TestRestarterAlreadyRunning 测试 ErrAlreadyRunning 被视为成功
func TestRestarterAlreadyRunning(t *testing.T) {
	starter := &fakeStarter{err: process.ErrAlreadyRunning}
	r := NewRestarter(starter, testRestartConfig(), nil)

	var gotSuccess bool
	r.SetCallback(func(success bool, err error) { gotSuccess = success })

	require.NoError(t, r.DoRestart(context.Background()))
	assert.True(t, gotSuccess)
	// No attempt is recorded against the window / 窗口内不记录此次尝试
	assert.Equal(t, 0, r.GetHistory().RestartCount)
}

// TestRestarterFailurePropagated tests that start failures are reported
// TestRestarterFailurePropagated 测试启动失败会被上报
func TestRestarterFailurePropagated(t *testing.T) {
	bootErr := errors.New("interpreter missing")
	starter := &fakeStarter{err: bootErr}
	r := NewRestarter(starter, testRestartConfig(), nil)

	err := r.DoRestart(context.Background())
	assert.ErrorIs(t, err, bootErr)
	// Failed attempts still consume the window budget / 失败的尝试同样消耗窗口额度
	assert.Equal(t, 1, r.GetHistory().RestartCount)
}

// TestRestarterWindowLimitAndCooldown tests the limit-cooldown-reset cycle
// TestRestarterWindowLimitAndCooldown 测试限制-冷却-重置的完整周期
func TestRestarterWindowLimitAndCooldown(t *testing.T) {
	starter := &fakeStarter{}
	cfg := testRestartConfig()
	r := NewRestarter(starter, cfg, nil)

	// Drive a fake clock / 驱动模拟时钟
	now := time.Now()
	r.now = func() time.Time { return now }

	// Exhaust the window budget / 耗尽窗口额度
	for i := 0; i < cfg.MaxRestarts; i++ {
		assert.True(t, r.ShouldRestart(), "restart %d should be allowed", i)
		require.NoError(t, r.DoRestart(context.Background()))
		now = now.Add(time.Second)
	}

	// The next attempt trips the cooldown / 下一次尝试触发冷却
	assert.False(t, r.ShouldRestart())
	assert.True(t, r.IsInCooldown())

	// Still in cooldown partway through / 冷却中途仍被拒绝
	now = now.Add(cfg.Cooldown / 2)
	assert.False(t, r.ShouldRestart())

	// After the cooldown the budget resets / 冷却结束后额度重置
	now = now.Add(cfg.Cooldown)
	assert.True(t, r.ShouldRestart())
	assert.False(t, r.IsInCooldown())
	assert.Equal(t, 0, r.GetHistory().RestartCount)
}

// TestRestarterSuppressedSentinel tests that a refused restart surfaces
// the suppression sentinel so callers can journal it
// TestRestarterSuppressedSentinel 测试被拒绝的重启返回抑制哨兵错误，
// 以便调用方记录到运行日志
func TestRestarterSuppressedSentinel(t *testing.T) {
	starter := &fakeStarter{}
	cfg := testRestartConfig()
	r := NewRestarter(starter, cfg, nil)

	now := time.Now()
	r.now = func() time.Time { return now }

	for i := 0; i < cfg.MaxRestarts; i++ {
		require.NoError(t, r.DoRestart(context.Background()))
	}

	err := r.OnCrash(context.Background())
	assert.ErrorIs(t, err, ErrRestartSuppressed)
	// The refused crash never reaches the starter / 被拒绝的崩溃不会到达启动器
	assert.Equal(t, cfg.MaxRestarts, starter.calls)
}

// Restarts spread wider than the window never trigger the cooldown.
// 间隔超过窗口的重启绝不会触发冷却。
func TestProperty_SparseRestartsNeverCooldown(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testRestartConfig()
		cfg.MaxRestarts = rapid.IntRange(1, 5).Draw(t, "maxRestarts")
		cfg.Window = time.Duration(rapid.Int64Range(1, 60).Draw(t, "windowSecs")) * time.Second

		starter := &fakeStarter{}
		r := NewRestarter(starter, cfg, nil)

		now := time.Now()
		r.now = func() time.Time { return now }

		attempts := rapid.IntRange(1, 20).Draw(t, "attempts")
		for i := 0; i < attempts; i++ {
			if !r.ShouldRestart() {
				t.Fatalf("attempt %d denied despite sparse spacing", i)
			}
			if err := r.DoRestart(context.Background()); err != nil {
				t.Fatalf("restart failed: %v", err)
			}
			// Step past the window so each attempt stands alone
			// 跨过窗口，使每次尝试都独立计数
			now = now.Add(cfg.Window + time.Second)
		}

		if r.IsInCooldown() {
			t.Error("cooldown entered despite sparse restarts")
		}
	})
}

// Dense restarts beyond the budget always end in cooldown.
// 超出额度的密集重启总是进入冷却。
func TestProperty_DenseRestartsAlwaysCooldown(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testRestartConfig()
		cfg.MaxRestarts = rapid.IntRange(1, 5).Draw(t, "maxRestarts")
		cfg.Window = time.Duration(rapid.Int64Range(10, 60).Draw(t, "windowSecs")) * time.Second

		starter := &fakeStarter{}
		r := NewRestarter(starter, cfg, nil)

		now := time.Now()
		r.now = func() time.Time { return now }

		// All attempts land inside one window / 所有尝试落在同一窗口内
		for i := 0; i < cfg.MaxRestarts; i++ {
			if !r.ShouldRestart() {
				t.Fatalf("attempt %d denied before budget exhausted", i)
			}
			if err := r.DoRestart(context.Background()); err != nil {
				t.Fatalf("restart failed: %v", err)
			}
		}

		if r.ShouldRestart() {
			t.Error("restart allowed beyond the window budget")
		}
		if !r.IsInCooldown() {
			t.Error("cooldown not entered after budget exhausted")
		}
	})
}
