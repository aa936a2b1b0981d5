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
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PIDFile tracks the managed bot process through a plain-text PID file.
// PIDFile 通过纯文本 PID 文件跟踪被托管的 Bot 进程。
//
// The file is the primary discovery mechanism; command-line pattern
// matching is only a fallback for processes started outside botkeeper.
// 该文件是主要的发现机制；命令行模式匹配仅作为在 botkeeper 之外
// 启动的进程的备用手段。
type PIDFile struct {
	// Path is the PID file location
	// Path 是 PID 文件位置
	Path string
}

// NewPIDFile creates a PIDFile for the given path
// NewPIDFile 为给定路径创建 PIDFile
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Read returns the PID stored in the file.
// Read 返回文件中存储的 PID。
// Returns os.ErrNotExist if the file does not exist.
// 如果文件不存在，返回 os.ErrNotExist。
func (f *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: invalid content in %s", ErrStalePIDFile, f.Path)
	}
	return pid, nil
}

// Acquire creates the PID file exclusively, claiming the single-instance
// slot before the process is spawned. This narrows the check-then-launch
// race the shell harness had: two concurrent starts cannot both win the
// O_EXCL create.
// Acquire 以独占方式创建 PID 文件，在进程启动前占住单实例槽位。
// 这缩小了 shell 脚本的“检查后启动”竞态：两个并发启动不可能
// 同时赢得 O_EXCL 创建。
func (f *PIDFile) Acquire() error {
	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrAlreadyRunning
		}
		return err
	}
	return file.Close()
}

// Commit writes the spawned process PID into an acquired file
// Commit 将已启动进程的 PID 写入已占有的文件
func (f *PIDFile) Commit(pid int) error {
	return os.WriteFile(f.Path, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

// Remove deletes the PID file, ignoring a missing file
// Remove 删除 PID 文件，忽略文件不存在的情况
func (f *PIDFile) Remove() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether the PID file is present
// Exists 报告 PID 文件是否存在
func (f *PIDFile) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}
