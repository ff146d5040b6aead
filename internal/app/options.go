package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 同时运行后台 API 与任务消费者
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultAppName = "reseller-hub"

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// ParseMode 校验启动模式，空值视为 all
func ParseMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	}
	return "", fmt.Errorf("unknown run mode %q (expected all, api or worker)", raw)
}

// appName 日志中标识当前后台实例
func (o Options) appName() string {
	if o.Config != nil {
		if name := strings.TrimSpace(o.Config.App.Name); name != "" {
			return name
		}
	}
	return defaultAppName
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if mode, err := ParseMode(opts.Mode); err == nil {
		opts.Mode = mode
	}
	return opts
}
