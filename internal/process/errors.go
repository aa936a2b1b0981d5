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

package process

import "errors"

// Common errors for bot process management
// Bot 进程管理的常见错误
var (
	// ErrVenvMissing indicates the Python virtual environment was not found
	// ErrVenvMissing 表示未找到 Python 虚拟环境
	ErrVenvMissing = errors.New("process: virtual environment not found")

	// ErrConfigMissing indicates the bot configuration file was not found
	// ErrConfigMissing 表示未找到 Bot 配置文件
	ErrConfigMissing = errors.New("process: bot configuration file not found")

	// ErrAlreadyRunning indicates a matching bot process is already running
	// ErrAlreadyRunning 表示匹配的 Bot 进程已在运行
	ErrAlreadyRunning = errors.New("process: bot is already running")

	// ErrNotRunning indicates no matching bot process was found
	// ErrNotRunning 表示未找到匹配的 Bot 进程
	ErrNotRunning = errors.New("process: bot is not running")

	// ErrStartFailed indicates the bot process failed to start
	// ErrStartFailed 表示 Bot 进程启动失败
	ErrStartFailed = errors.New("process: bot failed to start")

	// ErrStopFailed indicates the bot process survived SIGKILL
	// ErrStopFailed 表示 Bot 进程在 SIGKILL 后仍然存活
	ErrStopFailed = errors.New("process: bot failed to stop")

	// ErrStalePIDFile indicates the PID file refers to a dead or foreign process
	// ErrStalePIDFile 表示 PID 文件指向已死亡或无关的进程
	ErrStalePIDFile = errors.New("process: stale PID file")
)
