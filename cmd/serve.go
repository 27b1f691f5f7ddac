package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hospital-api/internal/logger"
)

// 文档注释：运行 HTTP 服务直到 ctx 结束
// 背景：Shutdown 一开始 listen 就返回 ErrServerClosed，此时仍有请求在处理。
// 约束：正常关闭时等待 Shutdown 排空（最长 grace）后才返回，调用方随后才能关闭存储。
func serve(ctx context.Context, s *http.Server, listen func() error, grace time.Duration) error {
	l := logger.L()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		l.Info("shutdown_begin")
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()
	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
