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

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Scanner locates bot processes by command-line pattern.
// Scanner 通过命令行模式定位 Bot 进程。
//
// The pattern match preserves the `python.*main.py` contract of the shell
// harness; PIDFile is the preferred mechanism and the scanner only catches
// processes started outside botkeeper.
// 模式匹配保留了 shell 脚本的 `python.*main.py` 约定；PIDFile 是首选
// 机制，扫描器只用于捕获在 botkeeper 之外启动的进程。
type Scanner struct {
	pattern *regexp.Regexp
}

// NewScanner compiles the command-line pattern into a Scanner
// NewScanner 将命令行模式编译为 Scanner
func NewScanner(pattern string) (*Scanner, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid bot pattern %q: %w", pattern, err)
	}
	return &Scanner{pattern: re}, nil
}

// IsBotProcess checks if a command line belongs to the bot process
// IsBotProcess 检查命令行是否属于 Bot 进程
func (s *Scanner) IsBotProcess(cmdline string) bool {
	return s.pattern.MatchString(cmdline)
}

// Scan returns the PIDs of all live processes whose command line matches
// the bot pattern. The botkeeper process itself is excluded.
// Scan 返回命令行匹配 Bot 模式的所有存活进程的 PID。
// botkeeper 进程自身被排除。
func (s *Scanner) Scan() ([]int, error) {
	if runtime.GOOS == "linux" {
		return s.scanProc()
	}
	return s.scanPS()
}

// Cmdline returns the command line for a PID, or "" if unreadable.
// Cmdline 返回指定 PID 的命令行，不可读时返回空字符串。
func (s *Scanner) Cmdline(pid int) string {
	if runtime.GOOS == "linux" {
		data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", " "))
	}

	out, err := exec.Command("ps", "-o", "args=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Matches reports whether the process with the given PID is alive and
// matches the bot pattern. Used for stale PID file detection (PID reuse).
// Matches 报告给定 PID 的进程是否存活且匹配 Bot 模式。
// 用于过期 PID 文件检测（PID 复用）。
func (s *Scanner) Matches(pid int) bool {
	cmdline := s.Cmdline(pid)
	return cmdline != "" && s.IsBotProcess(cmdline)
}

// scanProc walks /proc on Linux and matches cmdline files directly,
// avoiding a shell round-trip through ps and grep.
// scanProc 在 Linux 上遍历 /proc 并直接匹配 cmdline 文件，
// 避免通过 ps 和 grep 的 shell 往返。
func (s *Scanner) scanProc() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("failed to read /proc: %w", err)
	}

	self := os.Getpid()
	var pids []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == self {
			continue
		}

		data, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "cmdline"))
		if err != nil {
			// Process exited between ReadDir and ReadFile / 进程在两次读取之间退出
			continue
		}
		cmdline := strings.ReplaceAll(string(data), "\x00", " ")
		if s.IsBotProcess(cmdline) {
			pids = append(pids, pid)
		}
	}

	return pids, nil
}

// scanPS shells out to ps on non-Linux systems
// scanPS 在非 Linux 系统上调用 ps
func (s *Scanner) scanPS() ([]int, error) {
	out, err := exec.Command("ps", "-eo", "pid=,args=").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to scan processes: %w", err)
	}

	self := os.Getpid()
	var pids []int
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid == self {
			continue
		}
		if s.IsBotProcess(strings.Join(fields[1:], " ")) {
			pids = append(pids, pid)
		}
	}

	return pids, nil
}
