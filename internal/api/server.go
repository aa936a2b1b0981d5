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

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP control API.
// Server 封装 HTTP 控制 API。
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer creates the API server and registers all routes.
// NewServer 创建 API 服务器并注册所有路由。
func NewServer(listen string, handler *Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("api")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), loggerMiddleware(log))

	// Liveness probe / 存活探针
	r.GET("/healthz", handler.Healthz)

	// API V1
	apiV1Router := r.Group("/api/v1")
	{
		// Status / 状态
		apiV1Router.GET("/status", handler.Status)

		// Run history / 运行历史
		runsRouter := apiV1Router.Group("/runs")
		{
			runsRouter.GET("", handler.ListRuns)
			runsRouter.GET("/:run_id/events", handler.ListRunEvents)
		}

		// Control / 控制
		apiV1Router.POST("/stop", handler.StopBot)
		apiV1Router.POST("/restart", handler.RestartBot)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:    listen,
			Handler: r,
		},
		log: log,
	}
}

// Start serves the API until the listener fails or Shutdown is called.
// Start 运行 API 服务，直到监听失败或调用 Shutdown。
func (s *Server) Start() error {
	s.log.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the API server gracefully.
// Shutdown 优雅地停止 API 服务器。
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// loggerMiddleware logs each request with latency and status.
// loggerMiddleware 记录每个请求的延迟与状态。
func loggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
