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

import "errors"

// Error definitions for journal operations.
// 运行日志操作的错误定义。
var (
	// ErrRunNotFound indicates the requested run record does not exist.
	// ErrRunNotFound 表示请求的运行记录不存在。
	ErrRunNotFound = errors.New("journal: run record not found")
	// ErrRunIDDuplicate indicates a run record with the same run ID already exists.
	// ErrRunIDDuplicate 表示具有相同运行 ID 的记录已存在。
	ErrRunIDDuplicate = errors.New("journal: run ID already exists")
	// ErrRunIDEmpty indicates the run ID is empty.
	// ErrRunIDEmpty 表示运行 ID 为空。
	ErrRunIDEmpty = errors.New("journal: run ID cannot be empty")
	// ErrEventTypeEmpty indicates the event type is empty.
	// ErrEventTypeEmpty 表示事件类型为空。
	ErrEventTypeEmpty = errors.New("journal: event type cannot be empty")
)
