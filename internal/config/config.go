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

// Package config provides configuration management for the botkeeper service.
// config 包提供 botkeeper 服务的配置管理功能。
//
// Configuration loading priority (highest to lowest):
// 配置加载优先级（从高到低）：
// 1. Command line arguments / 命令行参数
// 2. Environment variables / 环境变量
// 3. Configuration file / 配置文件
// 4. Default values / 默认值
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values
// 默认配置值
const (
	DefaultConfigPath     = "/etc/botkeeper/config.yaml"
	DefaultBotHome        = "/opt/vinted-bot"
	DefaultBotEntry       = "main.py"
	DefaultBotPattern     = "python.*main.py"
	DefaultStartTimeout   = 5 * time.Second
	DefaultStopTimeout    = 30 * time.Second
	DefaultMonitorTick    = 5 * time.Second
	DefaultFailThreshold  = 3
	DefaultRestartDelay   = 10 * time.Second
	DefaultMaxRestarts    = 3
	DefaultRestartWindow  = 5 * time.Minute
	DefaultCooldownPeriod = 30 * time.Minute
	DefaultAPIListen      = "127.0.0.1:8708"
	DefaultLogLevel       = "info"
	DefaultLogFile        = "/var/log/botkeeper/botkeeper.log"
	DefaultLogMaxSize     = 100 // MB
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAge      = 7 // days
)

// Config represents the botkeeper configuration
// Config 表示 botkeeper 配置
type Config struct {
	// Bot configuration (the managed process) / Bot 配置（被托管的进程）
	Bot BotConfig `mapstructure:"bot"`

	// Monitor configuration / 监控配置
	Monitor MonitorConfig `mapstructure:"monitor"`

	// Restart configuration / 重启配置
	Restart RestartConfig `mapstructure:"restart"`

	// Journal configuration / 运行日志配置
	Journal JournalConfig `mapstructure:"journal"`

	// API configuration / API 配置
	API APIConfig `mapstructure:"api"`

	// Log configuration (botkeeper's own log) / 日志配置（botkeeper 自身日志）
	Log LogConfig `mapstructure:"log"`
}

// BotConfig describes the managed Vinted bot process
// BotConfig 描述被托管的 Vinted Bot 进程
type BotConfig struct {
	// Home is the bot installation directory
	// Home 是 Bot 的安装目录
	Home string `mapstructure:"home"`

	// VenvDir is the Python virtual environment directory (defaults to Home/venv)
	// VenvDir 是 Python 虚拟环境目录（默认为 Home/venv）
	VenvDir string `mapstructure:"venv_dir"`

	// Entry is the bot entry script relative to Home
	// Entry 是相对于 Home 的 Bot 入口脚本
	Entry string `mapstructure:"entry"`

	// EnvFile is the bot configuration file that must exist before start
	// EnvFile 是启动前必须存在的 Bot 配置文件
	EnvFile string `mapstructure:"env_file"`

	// LogFile is where the bot's stdout/stderr is appended
	// LogFile 是 Bot 标准输出/标准错误追加写入的文件
	LogFile string `mapstructure:"log_file"`

	// Pattern is the command-line pattern identifying the bot process
	// Pattern 是识别 Bot 进程的命令行模式
	Pattern string `mapstructure:"pattern"`

	// PIDFile is the PID file path (defaults to Home/botkeeper.pid)
	// PIDFile 是 PID 文件路径（默认为 Home/botkeeper.pid）
	PIDFile string `mapstructure:"pid_file"`

	// StartTimeout is the liveness confirmation window after spawn
	// StartTimeout 是启动后确认存活的时间窗口
	StartTimeout time.Duration `mapstructure:"start_timeout"`

	// StopTimeout is the graceful shutdown window before SIGKILL
	// StopTimeout 是发送 SIGKILL 前的优雅关闭时间窗口
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

// MonitorConfig contains liveness monitoring settings
// MonitorConfig 包含存活监控设置
type MonitorConfig struct {
	// Interval is the liveness check interval
	// Interval 是存活检查间隔
	Interval time.Duration `mapstructure:"interval"`

	// FailThreshold is the number of consecutive failed checks before a crash is declared
	// FailThreshold 是判定崩溃前连续检查失败的次数
	FailThreshold int `mapstructure:"fail_threshold"`
}

// RestartConfig contains automatic restart settings for supervise mode
// RestartConfig 包含托管模式的自动重启设置
type RestartConfig struct {
	// Enabled toggles automatic restart on crash
	// Enabled 控制崩溃时是否自动重启
	Enabled bool `mapstructure:"enabled"`

	// Delay is the pause before a restart attempt
	// Delay 是重启尝试前的等待时间
	Delay time.Duration `mapstructure:"delay"`

	// MaxRestarts is the maximum number of restarts within Window
	// MaxRestarts 是时间窗口内的最大重启次数
	MaxRestarts int `mapstructure:"max_restarts"`

	// Window is the time window for counting restarts
	// Window 是统计重启次数的时间窗口
	Window time.Duration `mapstructure:"window"`

	// Cooldown is the suppression period after MaxRestarts is exceeded
	// Cooldown 是超过最大重启次数后的冷却时间
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// JournalConfig contains run-history journal settings
// JournalConfig 包含运行历史日志设置
type JournalConfig struct {
	// Enabled toggles the SQLite run journal
	// Enabled 控制是否启用 SQLite 运行日志
	Enabled bool `mapstructure:"enabled"`

	// Path is the SQLite database file (defaults to Bot.Home/botkeeper.db)
	// Path 是 SQLite 数据库文件（默认为 Bot.Home/botkeeper.db）
	Path string `mapstructure:"path"`
}

// APIConfig contains HTTP status API settings
// APIConfig 包含 HTTP 状态 API 设置
type APIConfig struct {
	// Enabled toggles the HTTP status API in supervise mode
	// Enabled 控制托管模式下是否启用 HTTP 状态 API
	Enabled bool `mapstructure:"enabled"`

	// Listen is the address the API binds to
	// Listen 是 API 监听地址
	Listen string `mapstructure:"listen"`
}

// LogConfig contains botkeeper's own logging settings
// LogConfig 包含 botkeeper 自身的日志设置
type LogConfig struct {
	// Level is the log level (debug, info, warn, error)
	// Level 是日志级别（debug, info, warn, error）
	Level string `mapstructure:"level"`

	// File is the log file path
	// File 是日志文件路径
	File string `mapstructure:"file"`

	// MaxSize is the maximum size of log file in MB before rotation
	// MaxSize 是日志文件轮转前的最大大小（MB）
	MaxSize int `mapstructure:"max_size"`

	// MaxBackups is the maximum number of old log files to retain
	// MaxBackups 是保留的旧日志文件的最大数量
	MaxBackups int `mapstructure:"max_backups"`

	// MaxAge is the maximum number of days to retain old log files
	// MaxAge 是保留旧日志文件的最大天数
	MaxAge int `mapstructure:"max_age"`
}

// Load loads configuration from file and environment variables
// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values / 设置默认值
	setDefaults(v)

	// Set config file path / 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Check environment variable / 检查环境变量
		envPath := os.Getenv("BOTKEEPER_CONFIG_PATH")
		if envPath != "" {
			v.SetConfigFile(envPath)
		} else {
			v.SetConfigFile(DefaultConfigPath)
		}
	}

	// Enable environment variable override / 启用环境变量覆盖
	v.SetEnvPrefix("BOTKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file / 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error if we have defaults
		// 如果有默认值，配置文件未找到不是错误
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			// Check if file exists / 检查文件是否存在
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, use defaults / 文件不存在，使用默认值
		}
	}

	// Unmarshal config / 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDerivedDefaults()

	return &cfg, nil
}

// setDefaults sets default configuration values
// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// Bot defaults / Bot 默认值
	v.SetDefault("bot.home", DefaultBotHome)
	v.SetDefault("bot.venv_dir", "")
	v.SetDefault("bot.entry", DefaultBotEntry)
	v.SetDefault("bot.env_file", "")
	v.SetDefault("bot.log_file", "")
	v.SetDefault("bot.pattern", DefaultBotPattern)
	v.SetDefault("bot.pid_file", "")
	v.SetDefault("bot.start_timeout", DefaultStartTimeout)
	v.SetDefault("bot.stop_timeout", DefaultStopTimeout)

	// Monitor defaults / 监控默认值
	v.SetDefault("monitor.interval", DefaultMonitorTick)
	v.SetDefault("monitor.fail_threshold", DefaultFailThreshold)

	// Restart defaults / 重启默认值
	v.SetDefault("restart.enabled", true)
	v.SetDefault("restart.delay", DefaultRestartDelay)
	v.SetDefault("restart.max_restarts", DefaultMaxRestarts)
	v.SetDefault("restart.window", DefaultRestartWindow)
	v.SetDefault("restart.cooldown", DefaultCooldownPeriod)

	// Journal defaults / 运行日志默认值
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "")

	// API defaults / API 默认值
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.listen", DefaultAPIListen)

	// Log defaults / 日志默认值
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.max_size", DefaultLogMaxSize)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age", DefaultLogMaxAge)
}

// applyDerivedDefaults fills in paths that default relative to Bot.Home.
// applyDerivedDefaults 填充相对于 Bot.Home 的默认路径。
// The shell harness kept venv, .env, bot.log and the database next to
// main.py; keeping that layout means an existing installation works with
// no configuration beyond bot.home.
// Shell 脚本将 venv、.env、bot.log 和数据库放在 main.py 旁边；
// 保持相同布局意味着现有安装只需配置 bot.home 即可工作。
func (c *Config) applyDerivedDefaults() {
	if c.Bot.VenvDir == "" {
		c.Bot.VenvDir = filepath.Join(c.Bot.Home, "venv")
	}
	if c.Bot.EnvFile == "" {
		c.Bot.EnvFile = filepath.Join(c.Bot.Home, ".env")
	}
	if c.Bot.LogFile == "" {
		c.Bot.LogFile = filepath.Join(c.Bot.Home, "bot.log")
	}
	if c.Bot.PIDFile == "" {
		c.Bot.PIDFile = filepath.Join(c.Bot.Home, "botkeeper.pid")
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(c.Bot.Home, "botkeeper.db")
	}
}

// Validate validates the configuration
// Validate 验证配置
func (c *Config) Validate() error {
	// Validate bot settings / 验证 Bot 设置
	if c.Bot.Home == "" {
		return errors.New("bot.home is required")
	}
	if c.Bot.Entry == "" {
		return errors.New("bot.entry is required")
	}
	if c.Bot.Pattern == "" {
		return errors.New("bot.pattern is required")
	}

	// Validate timeouts / 验证超时
	if c.Bot.StartTimeout <= 0 {
		return errors.New("bot.start_timeout must be positive")
	}
	if c.Bot.StopTimeout <= 0 {
		return errors.New("bot.stop_timeout must be positive")
	}

	// Validate monitor settings / 验证监控设置
	if c.Monitor.Interval < time.Second {
		return errors.New("monitor.interval must be at least 1 second")
	}
	if c.Monitor.FailThreshold < 1 {
		return errors.New("monitor.fail_threshold must be at least 1")
	}

	// Validate restart settings / 验证重启设置
	if c.Restart.Enabled {
		if c.Restart.MaxRestarts < 1 {
			return errors.New("restart.max_restarts must be at least 1")
		}
		if c.Restart.Window <= 0 {
			return errors.New("restart.window must be positive")
		}
	}

	// Validate API listen address / 验证 API 监听地址
	if c.API.Enabled && c.API.Listen == "" {
		return errors.New("api.listen is required when api.enabled is true")
	}

	// Validate log level / 验证日志级别
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	return nil
}

// PythonPath returns the interpreter inside the bot's virtual environment
// PythonPath 返回 Bot 虚拟环境中的解释器路径
func (c *Config) PythonPath() string {
	return filepath.Join(c.Bot.VenvDir, "bin", "python")
}

// EntryPath returns the absolute path of the bot entry script
// EntryPath 返回 Bot 入口脚本的绝对路径
func (c *Config) EntryPath() string {
	return filepath.Join(c.Bot.Home, c.Bot.Entry)
}

// String returns a string representation of the config (for debugging)
// String 返回配置的字符串表示（用于调试）
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Bot.Home: %s, Bot.Pattern: %s, Monitor.Interval: %v, Restart.Enabled: %v, Log.Level: %s}",
		c.Bot.Home,
		c.Bot.Pattern,
		c.Monitor.Interval,
		c.Restart.Enabled,
		c.Log.Level,
	)
}
