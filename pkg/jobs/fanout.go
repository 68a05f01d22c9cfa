package jobs

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task produces one result of a fan-out batch. A non-nil error drops the result.
type Task[T any] struct {
	Key string
	Run func(ctx context.Context) (T, error)
}

// FanOutConfig configures worker pool behaviour.
type FanOutConfig struct {
	Workers int
	Logger  *zap.Logger
	// OnOmit is invoked for every task whose result is dropped.
	OnOmit func(key string, err error)
}

// FanOut runs tasks on a bounded pool and returns the successful results in task order.
// Failed tasks are logged and omitted; they are never retried and never fail the batch.
func FanOut[T any](ctx context.Context, tasks []Task[T], cfg FanOutConfig) []T {
	if len(tasks) == 0 {
		return []T{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	slots := make([]chan T, len(tasks))
	for i := range slots {
		slots[i] = make(chan T, 1)
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			defer close(slots[i])
			if err := ctx.Err(); err != nil {
				omit(cfg, task.Key, err)
				return nil
			}
			result, err := task.Run(ctx)
			if err != nil {
				omit(cfg, task.Key, err)
				return nil
			}
			slots[i] <- result
			return nil
		})
	}
	_ = g.Wait()

	results := make([]T, 0, len(tasks))
	for _, slot := range slots {
		if result, ok := <-slot; ok {
			results = append(results, result)
		}
	}
	return results
}

func omit(cfg FanOutConfig, key string, err error) {
	cfg.Logger.Warn("fan-out task omitted", zap.String("task", key), zap.Error(err))
	if cfg.OnOmit != nil {
		cfg.OnOmit(key, err)
	}
}
