package app

import (
	"errors"

	"github.com/reseller-hub/internal/config"
	"github.com/reseller-hub/internal/provider"
	"github.com/reseller-hub/internal/router"
	"github.com/reseller-hub/internal/worker"
)

// BuildRunner 构建服务运行器；返回的 cleanup 负责释放容器中的连接
func BuildRunner(cfg *config.Config, mode string) (*Runner, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := container.Close

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Address(), engine))
	}

	// 队列未启用时 all 模式只运行 HTTP
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		cleanup()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...).Describe(cfg.App.Name, mode), cleanup, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if _, err := ParseMode(opts.Mode); err != nil {
		return err
	}

	runner, cleanup, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	defer cleanup()

	opts.Logger.Infow("app_start", "app", opts.appName(), "addr", opts.Config.Server.Address(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
