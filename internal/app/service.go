package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 由 Runner 托管的长驻组件（后台 API、asynq 消费者）
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// 停机原因
const (
	shutdownReasonSignal       = "signal"
	shutdownReasonServiceError = "service_error"
	shutdownReasonServiceExit  = "service_exit"
)

type serviceResult struct {
	name string
	err  error
}

// Runner 并行运行各组件，任一组件退出即整体停机
type Runner struct {
	services []Service
	app      string
	mode     string
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services, app: defaultAppName, mode: ModeAll}
}

// Describe 设置日志中的实例名与启动模式
func (r *Runner) Describe(app, mode string) *Runner {
	if app != "" {
		r.app = app
	}
	if mode != "" {
		r.mode = mode
	}
	return r
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	runner.Describe(opts.appName(), opts.Mode)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 启动全部组件并阻塞到收到信号或任一组件退出
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.With("app", r.app, "mode", r.mode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan serviceResult, len(r.services))
	for _, svc := range r.services {
		go r.start(ctx, svc, log, results)
	}

	var runErr error
	reason := shutdownReasonSignal
	culprit := ""
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case res := <-results:
		culprit = res.name
		runErr = res.err
		reason = shutdownReasonServiceExit
		if res.err != nil {
			reason = shutdownReasonServiceError
			log.Errorw("service_failed", "service", res.name, "error", res.err)
		}
	}
	log.Infow("runner_shutdown", "reason", reason, "service", culprit, "services", len(r.services))

	cancel()
	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	for _, svc := range r.services {
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func (r *Runner) start(ctx context.Context, svc Service, log *zap.SugaredLogger, results chan<- serviceResult) {
	if svc == nil {
		results <- serviceResult{name: "unknown", err: errors.New("service is nil")}
		return
	}
	name := svc.Name()
	log.Infow("service_start", "service", name)
	err := svc.Start(ctx)
	log.Infow("service_exit", "service", name)
	results <- serviceResult{name: name, err: err}
}
