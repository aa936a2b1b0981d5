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

package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides data access operations for RunRecord and RunEvent entities.
// Repository 提供 RunRecord 和 RunEvent 实体的数据访问操作。
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
// NewRepository 创建一个新的 Repository 实例。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ============================================================================
// RunRecord Operations - 运行记录操作
// ============================================================================

// OpenRun creates a running record for a freshly started bot and returns it.
// OpenRun 为刚启动的 Bot 创建一条 running 状态的记录并返回。
func (r *Repository) OpenRun(ctx context.Context, pid int, trigger RunTrigger) (*RunRecord, error) {
	record := &RunRecord{
		RunID:     uuid.New().String(),
		PID:       pid,
		Trigger:   trigger,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.CreateRun(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// CreateRun creates a new run record in the database.
// CreateRun 在数据库中创建新的运行记录。
// Returns ErrRunIDDuplicate if a record with the same run ID already exists.
// 如果具有相同运行 ID 的记录已存在，则返回 ErrRunIDDuplicate。
func (r *Repository) CreateRun(ctx context.Context, record *RunRecord) error {
	if record.RunID == "" {
		return ErrRunIDEmpty
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&RunRecord{}).Where("run_id = ?", record.RunID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRunIDDuplicate
	}

	return r.db.WithContext(ctx).Create(record).Error
}

// CloseRun marks a run as ended with the given status and exit detail.
// CloseRun 以给定状态和退出详情将一次运行标记为结束。
// Returns ErrRunNotFound if the run record does not exist.
// 如果运行记录不存在，则返回 ErrRunNotFound。
func (r *Repository) CloseRun(ctx context.Context, runID string, status RunStatus, exitDetail string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&RunRecord{}).Where("run_id = ?", runID).Updates(map[string]interface{}{
		"status":      status,
		"ended_at":    &now,
		"exit_detail": exitDetail,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRunByRunID retrieves a run record by its run ID.
// GetRunByRunID 通过运行 ID 获取运行记录。
// Returns ErrRunNotFound if the run record does not exist.
// 如果运行记录不存在，则返回 ErrRunNotFound。
func (r *Repository) GetRunByRunID(ctx context.Context, runID string) (*RunRecord, error) {
	var record RunRecord
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &record, nil
}

// GetLatestRun retrieves the most recently started run record.
// GetLatestRun 获取最近启动的运行记录。
// Returns ErrRunNotFound if no run records exist.
// 如果不存在运行记录，则返回 ErrRunNotFound。
func (r *Repository) GetLatestRun(ctx context.Context) (*RunRecord, error) {
	var record RunRecord
	if err := r.db.WithContext(ctx).Order("started_at DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListRuns retrieves run records based on filter criteria with pagination.
// ListRuns 根据过滤条件和分页获取运行记录列表。
// Returns the list of run records and total count.
// 返回运行记录列表和总数。
func (r *Repository) ListRuns(ctx context.Context, filter *RunFilter) ([]*RunRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&RunRecord{})

	// Apply filters - 应用过滤条件
	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Trigger != "" {
			query = query.Where("run_trigger = ?", filter.Trigger)
		}
		if filter.StartTime != nil {
			query = query.Where("started_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("started_at <= ?", *filter.EndTime)
		}
	}

	// Get total count - 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination - 应用分页
	if filter != nil && filter.PageSize > 0 {
		offset := 0
		if filter.Page > 0 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var records []*RunRecord
	if err := query.Order("started_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// CloseDanglingRuns marks any still-running records as crashed.
// Used at startup when botkeeper finds journal entries left open
// by a previous supervisor that exited uncleanly.
// CloseDanglingRuns 将所有仍处于 running 状态的记录标记为 crashed。
// 在 botkeeper 启动时使用，处理上一个非正常退出的守护进程
// 遗留的未关闭记录。
func (r *Repository) CloseDanglingRuns(ctx context.Context, exitDetail string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&RunRecord{}).Where("status = ?", RunStatusRunning).Updates(map[string]interface{}{
		"status":      RunStatusCrashed,
		"ended_at":    &now,
		"exit_detail": exitDetail,
	})
	return result.RowsAffected, result.Error
}

// ============================================================================
// RunEvent Operations - 运行事件操作
// ============================================================================

// AppendEvent records a lifecycle event for a run.
// AppendEvent 为一次运行记录生命周期事件。
func (r *Repository) AppendEvent(ctx context.Context, event *RunEvent) error {
	if event.RunID == "" {
		return ErrRunIDEmpty
	}
	if event.Type == "" {
		return ErrEventTypeEmpty
	}

	return r.db.WithContext(ctx).Create(event).Error
}

// ListEvents retrieves the events of a run in chronological order.
// ListEvents 按时间顺序获取一次运行的事件列表。
func (r *Repository) ListEvents(ctx context.Context, runID string) ([]*RunEvent, error) {
	var events []*RunEvent
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
