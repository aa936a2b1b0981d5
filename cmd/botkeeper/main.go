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

// Package main is the entry point for botkeeper, the Vinted bot supervisor.
// main 包是 Vinted Bot 守护工具 botkeeper 的入口点。
//
// Botkeeper replaces the start/stop shell scripts around the bot:
// Botkeeper 取代了围绕 Bot 的启动/停止 shell 脚本：
// - Launch-if-not-running with precondition checks / 带前置条件检查的按需启动
// - Graceful stop with SIGKILL escalation / 带 SIGKILL 升级的优雅停止
// - Crash detection and automatic restart / 崩溃检测与自动重启
// - Run history journal and HTTP status API / 运行历史记录与 HTTP 状态 API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vintedbot/botkeeper/internal/api"
	"github.com/vintedbot/botkeeper/internal/config"
	"github.com/vintedbot/botkeeper/internal/journal"
	"github.com/vintedbot/botkeeper/internal/logger"
	"github.com/vintedbot/botkeeper/internal/monitor"
	"github.com/vintedbot/botkeeper/internal/process"
	"github.com/vintedbot/botkeeper/internal/restart"
	"go.uber.org/zap"
)

// Version information, set at build time
// 版本信息，在构建时设置
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// runtimeDeps bundles the components shared by all commands
// runtimeDeps 打包所有命令共享的组件
type runtimeDeps struct {
	cfg     *config.Config
	log     *zap.Logger
	manager *process.Manager
	repo    *journal.Repository // nil when the journal is disabled / 日志禁用时为 nil
	cleanup func()
}

// buildRuntime loads config and constructs the shared components
// buildRuntime 加载配置并构建共享组件
func buildRuntime() (*runtimeDeps, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w / 加载配置失败：%w", err, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w / 无效配置：%w", err, err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w / 初始化日志失败：%w", err, err)
	}

	manager, err := process.NewManager(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	deps := &runtimeDeps{
		cfg:     cfg,
		log:     log,
		manager: manager,
		cleanup: func() { _ = log.Sync() },
	}

	// The journal is best-effort: opening failures are logged,
	// never fatal for process operations.
	// 运行日志是尽力而为的：打开失败只记录日志，
	// 绝不阻塞进程操作。
	if cfg.Journal.Enabled {
		db, err := journal.OpenDB(cfg.Journal.Path)
		if err != nil {
			log.Warn("run journal unavailable", zap.Error(err))
		} else {
			deps.repo = journal.NewRepository(db)
		}
	}

	return deps, nil
}

// openJournalRun records a new run, tolerating journal failures
// openJournalRun 记录一次新运行，容忍日志失败
func (d *runtimeDeps) openJournalRun(ctx context.Context, pid int, trigger journal.RunTrigger) {
	if d.repo == nil {
		return
	}
	if _, err := d.repo.OpenRun(ctx, pid, trigger); err != nil {
		d.log.Warn("failed to record run start", zap.Error(err))
	}
}

// closeJournalRun closes the latest run record, tolerating journal failures
// closeJournalRun 关闭最近的运行记录，容忍日志失败
func (d *runtimeDeps) closeJournalRun(ctx context.Context, status journal.RunStatus, detail string) {
	if d.repo == nil {
		return
	}
	record, err := d.repo.GetLatestRun(ctx)
	if err != nil || record.Status != journal.RunStatusRunning {
		return
	}
	if err := d.repo.CloseRun(ctx, record.RunID, status, detail); err != nil {
		d.log.Warn("failed to record run end", zap.Error(err))
	}
}

// recordFailedStart journals a start attempt whose process never survived
// the liveness window, tolerating journal failures. The PID is unknown to
// the caller at this point, so the row carries zero.
// recordFailedStart 记录未能度过存活窗口的启动尝试，容忍日志失败。
// 此时调用方不知道 PID，因此记录为零。
func (d *runtimeDeps) recordFailedStart(ctx context.Context, trigger journal.RunTrigger, detail string) {
	if d.repo == nil {
		return
	}
	record, err := d.repo.OpenRun(ctx, 0, trigger)
	if err != nil {
		d.log.Warn("failed to record failed start", zap.Error(err))
		return
	}
	if err := d.repo.CloseRun(ctx, record.RunID, journal.RunStatusFailed, detail); err != nil {
		d.log.Warn("failed to record failed start", zap.Error(err))
	}
}

// Keeper represents the supervise-mode service that integrates all components
// Keeper 表示集成所有组件的托管模式服务
type Keeper struct {
	// deps holds the shared runtime components
	// deps 保存共享的运行时组件
	deps *runtimeDeps

	// ctx is the main context for the keeper
	// ctx 是 Keeper 的主上下文
	ctx context.Context

	// cancel cancels the main context
	// cancel 取消主上下文
	cancel context.CancelFunc

	// monitor watches bot liveness
	// monitor 监控 Bot 存活
	monitor *monitor.Monitor

	// restarter restarts the bot after crashes
	// restarter 在崩溃后重启 Bot
	restarter *restart.Restarter

	// apiServer serves the HTTP control API
	// apiServer 提供 HTTP 控制 API
	apiServer *api.Server

	// leaveRunning keeps the detached bot alive across supervisor exit
	// leaveRunning 在守护进程退出后保留分离的 Bot 进程
	leaveRunning bool

	// wg tracks running goroutines for graceful shutdown
	// wg 跟踪运行中的 goroutine 以实现优雅关闭
	wg sync.WaitGroup

	// running indicates if the keeper is running
	// running 表示 Keeper 是否正在运行
	running bool

	// mu protects the running state
	// mu 保护运行状态
	mu sync.RWMutex
}

// NewKeeper creates a new Keeper instance with all components initialized
// NewKeeper 创建一个初始化所有组件的新 Keeper 实例
func NewKeeper(deps *runtimeDeps, leaveRunning bool) *Keeper {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := deps.cfg

	// Create liveness monitor / 创建存活监控器
	mon := monitor.NewMonitor(cfg.Monitor.Interval, cfg.Monitor.FailThreshold,
		process.IsAlive, deps.log)

	// Create crash restarter / 创建崩溃重启器
	restarter := restart.NewRestarter(deps.manager, cfg.Restart, deps.log)

	k := &Keeper{
		deps:         deps,
		ctx:          ctx,
		cancel:       cancel,
		monitor:      mon,
		restarter:    restarter,
		leaveRunning: leaveRunning,
	}

	if cfg.API.Enabled {
		// Control operations go through the Keeper so an operator stop
		// is marked manual and never misread as a crash.
		// 控制操作经由 Keeper，使操作员的停止被标记为手动，
		// 不会被误判为崩溃。
		handler := api.NewHandler(k, deps.repo, restarter)
		k.apiServer = api.NewServer(cfg.API.Listen, handler, deps.log)
	}

	return k
}

// Status implements the API control surface
// Status 实现 API 控制接口
func (k *Keeper) Status() (*process.Info, error) {
	return k.deps.manager.Status()
}

// Stop stops the bot on behalf of an operator. The monitor is told first
// so the process disappearing is not declared a crash and restarted.
// Stop 代表操作员停止 Bot。先通知监控器，
// 使进程消失不会被判定为崩溃并被重启。
func (k *Keeper) Stop(ctx context.Context) error {
	k.monitor.MarkManuallyStopped()
	if err := k.deps.manager.Stop(ctx); err != nil {
		return err
	}
	k.monitor.Untrack()
	k.deps.closeJournalRun(ctx, journal.RunStatusStopped, "stopped via control API")
	return nil
}

// Restart restarts the bot on behalf of an operator and re-tracks the
// new incarnation.
// Restart 代表操作员重启 Bot 并重新跟踪新的进程实例。
func (k *Keeper) Restart(ctx context.Context) (*process.Info, error) {
	k.monitor.MarkManuallyStopped()
	k.deps.closeJournalRun(ctx, journal.RunStatusStopped, "restarted via control API")

	info, err := k.deps.manager.Restart(ctx)
	if err != nil {
		k.deps.recordFailedStart(ctx, journal.TriggerAPI, err.Error())
		return nil, err
	}

	k.deps.openJournalRun(ctx, info.PID, journal.TriggerAPI)
	k.monitor.Track(info.PID)
	return info, nil
}

// Run starts the Keeper service and all its components
// Run 启动 Keeper 服务及其所有组件
func (k *Keeper) Run() error {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return fmt.Errorf("keeper is already running / Keeper 已在运行")
	}
	k.running = true
	k.mu.Unlock()

	log := k.deps.log
	log.Info("botkeeper starting",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
		zap.String("bot_home", k.deps.cfg.Bot.Home))

	// Step 1: Close journal entries left open by an unclean supervisor exit
	// 步骤 1：关闭上次守护进程非正常退出遗留的未关闭记录
	if k.deps.repo != nil {
		if n, err := k.deps.repo.CloseDanglingRuns(k.ctx, "supervisor restarted"); err != nil {
			log.Warn("failed to close dangling runs", zap.Error(err))
		} else if n > 0 {
			log.Info("closed dangling run records", zap.Int64("count", n))
		}
	}

	// Step 2: Ensure the bot is running
	// 步骤 2：确保 Bot 正在运行
	pid, source, err := k.deps.manager.Find()
	if err != nil {
		return err
	}
	if pid > 0 {
		log.Info("bot already running, adopting", zap.Int("pid", pid), zap.String("source", string(source)))
		// The adopted bot gets its own run row so its events land somewhere;
		// any row it may have had was just closed as dangling.
		// 被接管的 Bot 获得自己的运行记录以承载其事件；
		// 它先前可能拥有的记录刚才已作为遗留记录关闭。
		k.deps.openJournalRun(k.ctx, pid, journal.TriggerManual)
	} else {
		info, err := k.deps.manager.Start(k.ctx)
		if err != nil {
			k.deps.recordFailedStart(k.ctx, journal.TriggerAuto, err.Error())
			return err
		}
		pid = info.PID
		k.deps.openJournalRun(k.ctx, pid, journal.TriggerAuto)
	}
	k.monitor.Track(pid)

	// Step 3: Wire crash handling
	// 步骤 3：接入崩溃处理
	k.monitor.SetCrashHandler(k.handleCrash)
	k.monitor.SetEventHandler(k.handleEvent)
	if err := k.monitor.Start(k.ctx); err != nil {
		return err
	}

	// Step 4: Serve the HTTP API
	// 步骤 4：启动 HTTP API 服务
	if k.apiServer != nil {
		k.wg.Add(1)
		go func() {
			defer k.wg.Done()
			if err := k.apiServer.Start(); err != nil {
				log.Error("api server failed", zap.Error(err))
			}
		}()
	}

	log.Info("botkeeper started", zap.Int("bot_pid", pid))

	<-k.ctx.Done()
	return nil
}

// handleCrash reacts to a declared bot crash: close the journal run,
// then hand over to the restarter.
// handleCrash 响应判定的 Bot 崩溃：关闭运行记录，然后交给重启器。
func (k *Keeper) handleCrash(state *monitor.TrackedBot) {
	log := k.deps.log
	log.Warn("bot crash detected", zap.Int("pid", state.PID))

	k.deps.closeJournalRun(k.ctx, journal.RunStatusCrashed,
		fmt.Sprintf("liveness check failed %d times", state.ConsecutiveFails))

	if err := k.restarter.OnCrash(k.ctx); err != nil {
		if errors.Is(err, restart.ErrRestartSuppressed) {
			// The window limit or cooldown refused the restart; journal it
			// 窗口限制或冷却期拒绝了重启；记录到运行日志
			k.handleEvent(&monitor.Event{
				Type:      monitor.EventRestartSuppressed,
				PID:       state.PID,
				Timestamp: time.Now(),
				Details: map[string]interface{}{
					"reason": err.Error(),
				},
			})
		} else {
			k.deps.recordFailedStart(k.ctx, journal.TriggerAuto, err.Error())
		}
		log.Error("bot not restarted", zap.Error(err))
		return
	}

	// Re-track the new incarnation
	// 重新跟踪新的进程实例
	if pid, _, err := k.deps.manager.Find(); err == nil && pid > 0 {
		k.deps.openJournalRun(k.ctx, pid, journal.TriggerAuto)
		k.monitor.TrackRestart(pid)
	}
}

// handleEvent forwards lifecycle events into the journal
// handleEvent 将生命周期事件写入运行日志
func (k *Keeper) handleEvent(event *monitor.Event) {
	if k.deps.repo == nil {
		return
	}
	record, err := k.deps.repo.GetLatestRun(k.ctx)
	if err != nil {
		return
	}
	_ = k.deps.repo.AppendEvent(k.ctx, &journal.RunEvent{
		RunID:   record.RunID,
		Type:    string(event.Type),
		PID:     event.PID,
		Details: journal.EventDetails(event.Details),
	})
}

// Shutdown stops the Keeper service gracefully. By default the managed
// bot is stopped with it; with leaveRunning the detached bot survives and
// only an explicit stop command ends it.
// Shutdown 优雅地停止 Keeper 服务。默认情况下被托管的 Bot 一并停止；
// 启用 leaveRunning 时分离的 Bot 继续存活，只有显式的停止命令才会终止它。
func (k *Keeper) Shutdown() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	k.running = false
	k.mu.Unlock()

	log := k.deps.log
	log.Info("botkeeper shutting down", zap.Bool("leave_running", k.leaveRunning))

	if k.apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := k.apiServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("api shutdown error", zap.Error(err))
		}
	}

	// Monitoring stops before the bot so our own stop is never seen
	// as a crash.
	// 监控先于 Bot 停止，避免自己的停止被视为崩溃。
	if err := k.monitor.Stop(); err != nil {
		log.Warn("monitor stop error", zap.Error(err))
	}

	if !k.leaveRunning {
		stopCtx, stopCancel := context.WithTimeout(context.Background(),
			k.deps.cfg.Bot.StopTimeout+10*time.Second)
		err := k.deps.manager.Stop(stopCtx)
		stopCancel()
		switch {
		case err == nil:
			k.deps.closeJournalRun(k.ctx, journal.RunStatusStopped, "stopped on supervisor shutdown")
			log.Info("bot stopped on shutdown")
		case errors.Is(err, process.ErrNotRunning):
			// Already gone, nothing to stop / 已经不在，无需停止
		default:
			log.Warn("failed to stop bot on shutdown", zap.Error(err))
		}
	}

	k.cancel()

	done := make(chan struct{})
	go func() {
		k.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("timeout waiting for goroutines")
	}

	log.Info("botkeeper shutdown complete")
}

// rootCmd is the root command for the botkeeper CLI
// rootCmd 是 botkeeper CLI 的根命令
var rootCmd = &cobra.Command{
	Use:   "botkeeper",
	Short: "Botkeeper - Process supervisor for the Vinted Discord bot",
	Long: `Botkeeper manages the lifecycle of the Vinted Discord bot process.
Botkeeper 管理 Vinted Discord Bot 进程的生命周期。

It replaces the start/stop shell scripts with:
它用以下能力取代启动/停止 shell 脚本：
- Launch-if-not-running with precondition checks / 带前置条件检查的按需启动
- Graceful stop with SIGKILL escalation / 带 SIGKILL 升级的优雅停止
- Crash detection and automatic restart / 崩溃检测与自动重启
- Run history journal and HTTP status API / 运行历史记录与 HTTP 状态 API`,
	SilenceUsage: true,
}

// startCmd launches the bot if it is not already running
// startCmd 在 Bot 未运行时启动它
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot if it is not already running / 在 Bot 未运行时启动它",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildRuntime()
		if err != nil {
			return err
		}
		defer deps.cleanup()

		info, err := deps.manager.Start(cmd.Context())
		if err != nil {
			if errors.Is(err, process.ErrStartFailed) {
				deps.recordFailedStart(cmd.Context(), journal.TriggerManual, err.Error())
			}
			fmt.Fprintf(os.Stderr, "Failed to start bot: %v\n", err)
			return err
		}

		deps.openJournalRun(cmd.Context(), info.PID, journal.TriggerManual)
		fmt.Printf("Bot started (PID: %d), logging to %s\n", info.PID, info.LogFile)
		return nil
	},
}

// stopCmd stops the bot with graceful escalation
// stopCmd 以优雅升级的方式停止 Bot
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the bot, escalating to SIGKILL if needed / 停止 Bot，必要时升级为 SIGKILL",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildRuntime()
		if err != nil {
			return err
		}
		defer deps.cleanup()

		if err := deps.manager.Stop(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop bot: %v\n", err)
			return err
		}

		deps.closeJournalRun(cmd.Context(), journal.RunStatusStopped, "stopped by operator")
		fmt.Println("Bot stopped")
		return nil
	},
}

// restartCmd stops then starts the bot
// restartCmd 先停止再启动 Bot
var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the bot / 重启 Bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildRuntime()
		if err != nil {
			return err
		}
		defer deps.cleanup()

		deps.closeJournalRun(cmd.Context(), journal.RunStatusStopped, "restarted by operator")
		info, err := deps.manager.Restart(cmd.Context())
		if err != nil {
			if errors.Is(err, process.ErrStartFailed) {
				deps.recordFailedStart(cmd.Context(), journal.TriggerManual, err.Error())
			}
			fmt.Fprintf(os.Stderr, "Failed to restart bot: %v\n", err)
			return err
		}

		deps.openJournalRun(cmd.Context(), info.PID, journal.TriggerManual)
		fmt.Printf("Bot restarted (PID: %d)\n", info.PID)
		return nil
	},
}

// statusCmd reports the bot process state
// statusCmd 报告 Bot 进程状态
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot process status / 显示 Bot 进程状态",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildRuntime()
		if err != nil {
			return err
		}
		defer deps.cleanup()

		info, err := deps.manager.Status()
		if err != nil {
			return err
		}

		if info.Status != process.StatusRunning {
			fmt.Println("Bot is not running")
			return fmt.Errorf("bot is not running / Bot 未运行")
		}

		fmt.Printf("Bot is running\n")
		fmt.Printf("  PID:       %d (via %s)\n", info.PID, info.Source)
		if !info.StartTime.IsZero() {
			fmt.Printf("  Uptime:    %s\n", info.Uptime.Round(time.Second))
		}
		if info.MemoryUsage > 0 {
			fmt.Printf("  Memory:    %.1f MB\n", float64(info.MemoryUsage)/1024/1024)
		}
		fmt.Printf("  Log file:  %s\n", info.LogFile)
		return nil
	},
}

// logsCmd prints or follows the bot log
// logsCmd 打印或跟随 Bot 日志
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the tail of the bot log / 显示 Bot 日志的末尾",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildRuntime()
		if err != nil {
			return err
		}
		defer deps.cleanup()

		tail, err := process.TailFile(deps.cfg.Bot.LogFile, logLines)
		if err != nil {
			return fmt.Errorf("cannot read bot log: %w / 无法读取 Bot 日志：%w", err, err)
		}
		if tail != "" {
			fmt.Println(strings.TrimRight(tail, "\n"))
		}

		if !followLogs {
			return nil
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		lines := make(chan string, 64)
		go func() {
			for line := range lines {
				fmt.Println(line)
			}
		}()
		err = process.FollowFile(ctx, deps.cfg.Bot.LogFile, lines)
		if errors.Is(err, context.Canceled) {
			// Interrupted follow is a clean exit / 中断跟随属于正常退出
			return nil
		}
		return err
	},
}

// runCmd runs botkeeper in supervise mode
// runCmd 以托管模式运行 botkeeper
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Supervise the bot: monitor, auto-restart, HTTP API / 托管 Bot：监控、自动重启、HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildRuntime()
		if err != nil {
			return err
		}
		defer deps.cleanup()

		keeper := NewKeeper(deps, leaveRunning)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		errChan := make(chan error, 1)
		go func() {
			errChan <- keeper.Run()
		}()

		select {
		case sig := <-sigChan:
			fmt.Printf("\nReceived signal: %v / 收到信号：%v\n", sig, sig)
			keeper.Shutdown()
		case err := <-errChan:
			if err != nil {
				return err
			}
		}

		return nil
	},
}

// versionCmd shows version information
// versionCmd 显示版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information / 打印版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Botkeeper\n")
		fmt.Printf("  Version:    %s\n", Version)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// configFile is the path to the configuration file
// configFile 是配置文件的路径
var configFile string

// logs command flags / logs 命令标志
var (
	logLines   int
	followLogs bool
)

// leaveRunning keeps the bot alive when supervise mode exits
// leaveRunning 在托管模式退出时保留 Bot 进程
var leaveRunning bool

func init() {
	// Add flags to root command
	// 向根命令添加标志
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: /etc/botkeeper/config.yaml)")

	logsCmd.Flags().IntVarP(&logLines, "lines", "n", process.DefaultLogTailLines, "number of log lines to show / 显示的日志行数")
	logsCmd.Flags().BoolVarP(&followLogs, "follow", "f", false, "follow log output / 跟随日志输出")

	runCmd.Flags().BoolVar(&leaveRunning, "leave-running", false,
		"leave the bot running when the supervisor exits / 守护进程退出时让 Bot 继续运行")

	// Add subcommands
	// 添加子命令
	rootCmd.AddCommand(startCmd, stopCmd, restartCmd, statusCmd, logsCmd, runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
