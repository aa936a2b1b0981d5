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

// Package process provides Vinted bot process lifecycle management.
// process 包提供 Vinted Bot 进程生命周期管理功能。
//
// This package provides:
// 此包提供：
// - Launch-if-not-running with precondition checks / 带前置条件检查的按需启动
// - Graceful stop with SIGKILL escalation / 带 SIGKILL 升级的优雅停止
// - PID file tracking with pattern-scan fallback / PID 文件跟踪与模式扫描兜底
// - Process status and memory reporting / 进程状态与内存报告
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/vintedbot/botkeeper/internal/config"
	"go.uber.org/zap"
)

// Status represents the status of the managed bot process
// Status 表示被托管 Bot 进程的状态
type Status string

const (
	// StatusRunning indicates the bot is running
	// StatusRunning 表示 Bot 正在运行
	StatusRunning Status = "running"

	// StatusStopped indicates the bot is stopped
	// StatusStopped 表示 Bot 已停止
	StatusStopped Status = "stopped"

	// StatusStarting indicates the bot is inside its liveness window
	// StatusStarting 表示 Bot 处于存活确认窗口内
	StatusStarting Status = "starting"

	// StatusStopping indicates a stop is in progress
	// StatusStopping 表示停止操作正在进行
	StatusStopping Status = "stopping"
)

// DiscoverySource records how a running bot process was found
// DiscoverySource 记录运行中的 Bot 进程是如何被发现的
type DiscoverySource string

const (
	// SourcePIDFile means the PID file identified the process
	// SourcePIDFile 表示通过 PID 文件识别进程
	SourcePIDFile DiscoverySource = "pidfile"

	// SourceScan means the command-line pattern scan identified the process
	// SourceScan 表示通过命令行模式扫描识别进程
	SourceScan DiscoverySource = "scan"

	// SourceNone means no matching process was found
	// SourceNone 表示未找到匹配的进程
	SourceNone DiscoverySource = "none"
)

// Liveness and escalation polling intervals
// 存活与升级轮询间隔
const (
	startPollInterval = 200 * time.Millisecond
	stopPollInterval  = 500 * time.Millisecond
	killWaitTimeout   = 5 * time.Second
)

// Info contains observable state of the managed bot process
// Info 包含被托管 Bot 进程的可观测状态
type Info struct {
	PID         int             `json:"pid"`
	Status      Status          `json:"status"`
	Source      DiscoverySource `json:"source"`
	StartTime   time.Time       `json:"start_time,omitempty"`
	Uptime      time.Duration   `json:"uptime,omitempty"`
	MemoryUsage int64           `json:"memory_usage,omitempty"`
	LogFile     string          `json:"log_file"`
}

// Manager manages the Vinted bot process lifecycle
// Manager 管理 Vinted Bot 进程的生命周期
type Manager struct {
	cfg     *config.Config
	scanner *Scanner
	pidFile *PIDFile
	log     *zap.Logger

	// exited delivers the wait result of a bot spawned by this Manager,
	// so the child is reaped and never lingers as a zombie.
	// exited 传递本 Manager 启动的 Bot 的等待结果，
	// 确保子进程被回收，不会残留为僵尸进程。
	exited chan error

	// mu serializes Start/Stop/Restart
	// mu 串行化 Start/Stop/Restart
	mu sync.Mutex
}

// NewManager creates a new Manager instance
// NewManager 创建一个新的 Manager 实例
func NewManager(cfg *config.Config, log *zap.Logger) (*Manager, error) {
	scanner, err := NewScanner(cfg.Bot.Pattern)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:     cfg,
		scanner: scanner,
		pidFile: NewPIDFile(cfg.Bot.PIDFile),
		log:     log.Named("process"),
	}, nil
}

// Find locates a running bot process: PID file first, pattern scan second.
// A PID file pointing at a dead process, or at a reused PID whose command
// line no longer matches the bot pattern, is removed as stale.
// Find 定位运行中的 Bot 进程：优先 PID 文件，其次模式扫描。
// 指向已死进程、或指向命令行不再匹配 Bot 模式的复用 PID 的
// PID 文件会被作为过期文件删除。
func (m *Manager) Find() (int, DiscoverySource, error) {
	if pid, err := m.pidFile.Read(); err == nil {
		if isProcessAlive(pid) && m.scanner.Matches(pid) {
			return pid, SourcePIDFile, nil
		}
		m.log.Warn("removing stale PID file",
			zap.String("path", m.pidFile.Path),
			zap.Int("pid", pid))
		if err := m.pidFile.Remove(); err != nil {
			return 0, SourceNone, err
		}
	} else if errors.Is(err, ErrStalePIDFile) {
		// Unparseable content, same treatment as a dead PID
		// 内容无法解析，按已死 PID 同样处理
		m.log.Warn("removing unreadable PID file", zap.String("path", m.pidFile.Path))
		if err := m.pidFile.Remove(); err != nil {
			return 0, SourceNone, err
		}
	}

	pids, err := m.scanner.Scan()
	if err != nil {
		return 0, SourceNone, err
	}
	if len(pids) > 0 {
		return pids[0], SourceScan, nil
	}

	return 0, SourceNone, nil
}

// Start launches the bot if it is not already running.
// Start 在 Bot 未运行时启动它。
//
// Preconditions: the virtual environment and the bot configuration file
// must exist, and no matching process may be running. The bot is spawned
// detached with stdout/stderr appended to the bot log file, and must
// survive the start timeout window to be considered started.
// 前置条件：虚拟环境和 Bot 配置文件必须存在，且没有匹配的进程在
// 运行。Bot 以分离方式启动，标准输出/标准错误追加写入 Bot 日志
// 文件，并且必须在启动超时窗口内保持存活才视为启动成功。
func (m *Manager) Start(ctx context.Context) (*Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Precondition: virtual environment / 前置条件：虚拟环境
	python := m.cfg.PythonPath()
	if _, err := os.Stat(python); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVenvMissing, m.cfg.Bot.VenvDir)
	}

	// Precondition: bot configuration file / 前置条件：Bot 配置文件
	if _, err := os.Stat(m.cfg.Bot.EnvFile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, m.cfg.Bot.EnvFile)
	}

	// Precondition: entry script / 前置条件：入口脚本
	entry := m.cfg.EntryPath()
	if _, err := os.Stat(entry); err != nil {
		return nil, fmt.Errorf("%w: entry script not found at %s", ErrStartFailed, entry)
	}

	// Precondition: not already running / 前置条件：没有已运行实例
	if pid, source, err := m.Find(); err != nil {
		return nil, err
	} else if pid > 0 {
		return nil, fmt.Errorf("%w: pid %d (via %s)", ErrAlreadyRunning, pid, source)
	}

	// Claim the single-instance slot before spawning
	// 在启动前占住单实例槽位
	if err := m.pidFile.Acquire(); err != nil {
		return nil, err
	}

	// Open the bot log for append, preserving the shell redirection
	// semantics across restarts.
	// 以追加方式打开 Bot 日志，保留跨次重启的 shell 重定向语义。
	logWriter, err := os.OpenFile(m.cfg.Bot.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		_ = m.pidFile.Remove()
		return nil, fmt.Errorf("%w: cannot open bot log: %v", ErrStartFailed, err)
	}

	cmd := exec.Command(python, entry)
	cmd.Dir = m.cfg.Bot.Home
	cmd.Env = os.Environ()
	cmd.Stdout = logWriter
	cmd.Stderr = logWriter
	// Detach into its own process group so the bot outlives botkeeper
	// 分离到独立进程组，使 Bot 的生命周期独立于 botkeeper
	setProcGroupAttr(cmd)

	if err := cmd.Start(); err != nil {
		logWriter.Close()
		_ = m.pidFile.Remove()
		return nil, fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	pid := cmd.Process.Pid
	startTime := time.Now()
	if err := m.pidFile.Commit(pid); err != nil {
		m.log.Warn("failed to write PID file", zap.Error(err))
	}

	m.log.Info("bot process spawned",
		zap.Int("pid", pid),
		zap.String("entry", entry),
		zap.String("log_file", m.cfg.Bot.LogFile))

	// Reap the child and observe early exits
	// 回收子进程并观察过早退出
	exited := make(chan error, 1)
	go func() {
		waitErr := cmd.Wait()
		logWriter.Close()
		exited <- waitErr
	}()
	m.exited = exited

	// The bot must survive the liveness window; an exit inside it is a
	// start failure and the tail of the bot log is included for diagnosis.
	// Bot 必须在存活窗口内保持运行；窗口内退出视为启动失败，
	// 并附上 Bot 日志的末尾用于诊断。
	select {
	case waitErr := <-exited:
		_ = m.pidFile.Remove()
		tail, _ := TailFile(m.cfg.Bot.LogFile, DefaultLogTailLines)
		m.log.Error("bot exited during liveness window",
			zap.Int("pid", pid),
			zap.Error(waitErr))
		return nil, fmt.Errorf("%w: exited during liveness window: %v\nlast log lines:\n%s",
			ErrStartFailed, waitErr, tail)
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		_ = m.pidFile.Remove()
		return nil, ctx.Err()
	case <-time.After(m.cfg.Bot.StartTimeout):
	}

	m.log.Info("bot started", zap.Int("pid", pid))
	return &Info{
		PID:       pid,
		Status:    StatusRunning,
		Source:    SourcePIDFile,
		StartTime: startTime,
		LogFile:   m.cfg.Bot.LogFile,
	}, nil
}

// Stop terminates the bot process: SIGTERM, graceful wait, then SIGKILL.
// Stop 终止 Bot 进程：SIGTERM、优雅等待、然后 SIGKILL。
// Returns ErrNotRunning when no matching process exists.
// 当不存在匹配进程时返回 ErrNotRunning。
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pids, err := m.findAll()
	if err != nil {
		return err
	}
	if len(pids) == 0 {
		return ErrNotRunning
	}

	// Graceful termination signal / 优雅终止信号
	for _, pid := range pids {
		if err := sendSignal(pid, syscall.SIGTERM); err == nil {
			m.log.Info("sent SIGTERM", zap.Int("pid", pid))
		}
	}

	// Wait for graceful exit / 等待优雅退出
	if m.waitAllDead(ctx, pids, m.cfg.Bot.StopTimeout, stopPollInterval) {
		_ = m.pidFile.Remove()
		m.log.Info("bot stopped gracefully", zap.Ints("pids", pids))
		return nil
	}

	// Forceful termination signal / 强制终止信号
	for _, pid := range pids {
		if isProcessAlive(pid) {
			_ = sendSignal(pid, syscall.SIGKILL)
			m.log.Warn("sent SIGKILL", zap.Int("pid", pid))
		}
	}

	if !m.waitAllDead(ctx, pids, killWaitTimeout, startPollInterval) {
		return fmt.Errorf("%w: still alive after SIGKILL", ErrStopFailed)
	}

	_ = m.pidFile.Remove()
	m.log.Info("bot stopped forcefully", zap.Ints("pids", pids))
	return nil
}

// Restart stops the bot if running, waits for full exit, then starts it.
// Restart 在 Bot 运行时先停止、等待完全退出、再启动。
func (m *Manager) Restart(ctx context.Context) (*Info, error) {
	err := m.Stop(ctx)
	if err != nil && err != ErrNotRunning {
		return nil, err
	}
	return m.Start(ctx)
}

// Status returns the current observable state of the bot process
// Status 返回 Bot 进程的当前可观测状态
func (m *Manager) Status() (*Info, error) {
	pid, source, err := m.Find()
	if err != nil {
		return nil, err
	}

	info := &Info{
		Status:  StatusStopped,
		Source:  source,
		LogFile: m.cfg.Bot.LogFile,
	}
	if pid == 0 {
		return info, nil
	}

	info.PID = pid
	info.Status = StatusRunning
	info.MemoryUsage = memoryUsage(pid)
	if start, ok := processStartTime(pid); ok {
		info.StartTime = start
		info.Uptime = time.Since(start)
	}
	return info, nil
}

// IsRunning reports whether a matching bot process is alive
// IsRunning 报告是否存在存活的匹配 Bot 进程
func (m *Manager) IsRunning() bool {
	pid, _, err := m.Find()
	return err == nil && pid > 0
}

// findAll merges the PID file process with any scan matches.
// Both lists are consulted because a pattern-matched process started
// outside botkeeper must be stoppable too.
// findAll 合并 PID 文件进程与扫描匹配的进程。两个来源都要查询，
// 因为在 botkeeper 之外启动的模式匹配进程也必须可以被停止。
func (m *Manager) findAll() ([]int, error) {
	var pids []int
	if pid, err := m.pidFile.Read(); err == nil && isProcessAlive(pid) {
		pids = append(pids, pid)
	}

	scanned, err := m.scanner.Scan()
	if err != nil {
		return nil, err
	}
	for _, pid := range scanned {
		found := false
		for _, p := range pids {
			if p == pid {
				found = true
				break
			}
		}
		if !found {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// waitAllDead polls until every PID is gone or the timeout elapses
// waitAllDead 轮询直到所有 PID 消失或超时
func (m *Manager) waitAllDead(ctx context.Context, pids []int, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		allDead := true
		for _, pid := range pids {
			if isProcessAlive(pid) {
				allDead = false
				break
			}
		}
		if allDead {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}

	allDead := true
	for _, pid := range pids {
		if isProcessAlive(pid) {
			allDead = false
			break
		}
	}
	return allDead
}

// Helper functions / 辅助函数

// IsAlive reports whether a process with the given PID exists
// IsAlive 报告给定 PID 的进程是否存在
func IsAlive(pid int) bool {
	return isProcessAlive(pid)
}

// isProcessAlive checks if a process with the given PID is alive
// isProcessAlive 检查给定 PID 的进程是否存活
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds, so signal 0 probes existence
	// 在 Unix 上 FindProcess 总是成功，因此用信号 0 探测存在性
	return process.Signal(syscall.Signal(0)) == nil
}

// sendSignal sends a signal to a process
// sendSignal 向进程发送信号
func sendSignal(pid int, sig syscall.Signal) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(sig)
}

// memoryUsage returns RSS in bytes for a process
// memoryUsage 返回进程的 RSS 内存（字节）
func memoryUsage(pid int) int64 {
	if runtime.GOOS == "linux" {
		return memoryUsageLinux(pid)
	}
	return memoryUsagePS(pid)
}

// memoryUsageLinux reads /proc/[pid]/statm for resident memory
// memoryUsageLinux 读取 /proc/[pid]/statm 获取常驻内存
func memoryUsageLinux(pid int) int64 {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/statm", pid))
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0
	}
	// RSS is in pages, convert to bytes (assuming 4KB pages)
	// RSS 以页为单位，转换为字节（假设 4KB 页）
	rss, _ := strconv.ParseInt(fields[1], 10, 64)
	return rss * 4096
}

// memoryUsagePS falls back to ps on non-Linux systems
// memoryUsagePS 在非 Linux 系统上回退到 ps
func memoryUsagePS(pid int) int64 {
	out, err := exec.Command("ps", "-o", "rss=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return 0
	}
	rss, _ := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	return rss * 1024
}

// processStartTime derives the start time of a process.
// processStartTime 推导进程的启动时间。
// On Linux it combines /proc/stat btime with the starttime field of
// /proc/[pid]/stat (USER_HZ ticks since boot).
// 在 Linux 上它结合 /proc/stat 的 btime 与 /proc/[pid]/stat 的
// starttime 字段（自启动以来的 USER_HZ 时钟数）。
func processStartTime(pid int) (time.Time, bool) {
	if runtime.GOOS != "linux" {
		return time.Time{}, false
	}

	statData, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return time.Time{}, false
	}
	// comm may contain spaces; fields resume after the closing paren
	// comm 可能包含空格；字段从右括号之后继续
	idx := strings.LastIndexByte(string(statData), ')')
	if idx < 0 {
		return time.Time{}, false
	}
	fields := strings.Fields(string(statData)[idx+1:])
	// starttime is overall field 22; state is field 3 at index 0 here
	// starttime 是整体第 22 个字段；state 是此处索引 0 的第 3 个字段
	if len(fields) < 20 {
		return time.Time{}, false
	}
	startTicks, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	btime, ok := bootTime()
	if !ok {
		return time.Time{}, false
	}

	const userHZ = 100
	return btime.Add(time.Duration(startTicks) * time.Second / userHZ), true
}

// bootTime reads the system boot time from /proc/stat
// bootTime 从 /proc/stat 读取系统启动时间
func bootTime() (time.Time, bool) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return time.Time{}, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "btime ") {
			sec, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "btime ")), 10, 64)
			if err != nil {
				return time.Time{}, false
			}
			return time.Unix(sec, 0), true
		}
	}
	return time.Time{}, false
}
