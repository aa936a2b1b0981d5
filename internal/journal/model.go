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

// Package journal provides run history tracking for the bot process.
// journal 包提供 Bot 进程的运行历史记录功能。
package journal

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RunStatus represents the lifecycle state of a bot run.
// RunStatus 表示一次 Bot 运行的生命周期状态。
type RunStatus string

const (
	// RunStatusRunning indicates the run is in progress.
	// RunStatusRunning 表示运行正在进行中。
	RunStatusRunning RunStatus = "running"
	// RunStatusStopped indicates the run was stopped by an operator.
	// RunStatusStopped 表示运行被操作员停止。
	RunStatusStopped RunStatus = "stopped"
	// RunStatusCrashed indicates the run ended without an operator stop.
	// RunStatusCrashed 表示运行在没有操作员停止的情况下终止。
	RunStatusCrashed RunStatus = "crashed"
	// RunStatusFailed indicates the bot never survived its start window.
	// RunStatusFailed 表示 Bot 未能度过启动窗口。
	RunStatusFailed RunStatus = "failed"
)

// RunTrigger records what initiated a run.
// RunTrigger 记录运行的发起方式。
type RunTrigger string

const (
	// TriggerManual means an operator start command.
	// TriggerManual 表示操作员的启动命令。
	TriggerManual RunTrigger = "manual"
	// TriggerAuto means the crash restarter.
	// TriggerAuto 表示崩溃重启器。
	TriggerAuto RunTrigger = "auto"
	// TriggerAPI means the HTTP control API.
	// TriggerAPI 表示 HTTP 控制 API。
	TriggerAPI RunTrigger = "api"
)

// EventDetails represents the JSON details of a run event.
// EventDetails 表示运行事件的 JSON 详情。
type EventDetails map[string]interface{}

// Value implements the driver.Valuer interface for database storage.
// Value 实现 driver.Valuer 接口用于数据库存储。
func (d EventDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for database retrieval.
// Scan 实现 sql.Scanner 接口用于数据库读取。
func (d *EventDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("journal: failed to scan EventDetails - expected []byte")
	}
	return json.Unmarshal(bytes, d)
}

// RunRecord represents one launch-to-exit span of the bot process.
// RunRecord 表示 Bot 进程从启动到退出的一次完整运行。
type RunRecord struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID      string     `json:"run_id" gorm:"size:36;uniqueIndex;not null"`
	PID        int        `json:"pid" gorm:"not null"`
	// trigger is reserved in SQLite, so the column is run_trigger
	// trigger 是 SQLite 保留字，因此列名为 run_trigger
	Trigger    RunTrigger `json:"trigger" gorm:"column:run_trigger;size:20;not null;index"`
	Status     RunStatus  `json:"status" gorm:"size:20;not null;index"`
	StartedAt  time.Time  `json:"started_at" gorm:"not null;index"`
	EndedAt    *time.Time `json:"ended_at"`
	ExitDetail string     `json:"exit_detail" gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the RunRecord model.
// TableName 指定 RunRecord 模型的表名。
func (RunRecord) TableName() string {
	return "run_records"
}

// RunEvent represents a lifecycle event within a run.
// RunEvent 表示一次运行中的生命周期事件。
type RunEvent struct {
	ID        uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID     string       `json:"run_id" gorm:"size:36;not null;index"`
	Type      string       `json:"type" gorm:"size:30;not null;index"`
	PID       int          `json:"pid"`
	Details   EventDetails `json:"details" gorm:"type:json"`
	CreatedAt time.Time    `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the RunEvent model.
// TableName 指定 RunEvent 模型的表名。
func (RunEvent) TableName() string {
	return "run_events"
}

// RunFilter represents filter criteria for querying run records.
// RunFilter 表示查询运行记录的过滤条件。
type RunFilter struct {
	Status    RunStatus  `json:"status"`
	Trigger   RunTrigger `json:"trigger"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}
