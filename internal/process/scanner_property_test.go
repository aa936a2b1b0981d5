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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// For any command line, the scanner identifies it as the bot exactly when
// it contains a python invocation of main.py.
// 对于任何命令行，当且仅当它包含对 main.py 的 python 调用时，
// 扫描器才将其识别为 Bot。
func TestProperty_BotProcessIdentification(t *testing.T) {
	scanner, err := NewScanner(`python.*main\.py`)
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		// Generate random prefix and suffix / 生成随机前缀和后缀
		prefix := rapid.StringMatching(`[a-zA-Z0-9/\-_ ]{0,40}`).Draw(t, "prefix")
		suffix := rapid.StringMatching(`[a-zA-Z0-9/\-_ ]{0,40}`).Draw(t, "suffix")

		// Command line with the bot invocation / 包含 Bot 调用的命令行
		withBot := fmt.Sprintf("%s python main.py %s", prefix, suffix)
		if !scanner.IsBotProcess(withBot) {
			t.Errorf("Should identify as bot process: %s", withBot)
		}

		// Venv interpreter path also matches / 虚拟环境解释器路径同样匹配
		venvInvocation := fmt.Sprintf("%s/venv/bin/python /srv/bot/main.py", prefix)
		if !scanner.IsBotProcess(venvInvocation) {
			t.Errorf("Should identify venv invocation as bot process: %s", venvInvocation)
		}

		// A different entry script does not match / 不同的入口脚本不匹配
		otherEntry := fmt.Sprintf("%s python other.py %s", prefix, suffix)
		if scanner.IsBotProcess(otherEntry) {
			t.Errorf("Should NOT identify as bot process: %s", otherEntry)
		}
	})
}

// TestScannerInvalidPattern tests that a bad regexp is rejected
// TestScannerInvalidPattern 测试无效正则表达式会被拒绝
func TestScannerInvalidPattern(t *testing.T) {
	_, err := NewScanner("[unclosed")
	assert.Error(t, err)
}

// TestScannerFindsLiveProcess tests Scan and Matches against a real process
// TestScannerFindsLiveProcess 测试 Scan 和 Matches 对真实进程的识别
func TestScannerFindsLiveProcess(t *testing.T) {
	// Use a sleep with a distinctive argument as the target
	// 使用带有特征参数的 sleep 作为目标进程
	marker := fmt.Sprintf("botkeeper-scan-test-%d", os.Getpid())
	cmd := exec.Command("sh", "-c", fmt.Sprintf("exec sleep 30 #%s", marker))
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	// Give /proc a moment to expose the process / 等待 /proc 暴露进程
	time.Sleep(100 * time.Millisecond)

	scanner, err := NewScanner("sleep 30")
	require.NoError(t, err)

	pids, err := scanner.Scan()
	require.NoError(t, err)
	assert.Contains(t, pids, cmd.Process.Pid)

	assert.True(t, scanner.Matches(cmd.Process.Pid))
	assert.NotEmpty(t, scanner.Cmdline(cmd.Process.Pid))
}

// TestScannerExcludesSelf tests that the scanning process never matches itself
// TestScannerExcludesSelf 测试扫描进程不会匹配自身
func TestScannerExcludesSelf(t *testing.T) {
	// Every process command line matches `.` / 任何进程命令行都匹配 `.`
	scanner, err := NewScanner(".")
	require.NoError(t, err)

	pids, err := scanner.Scan()
	require.NoError(t, err)
	assert.NotContains(t, pids, os.Getpid())
}
