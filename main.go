package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"modeleval/config"
	"modeleval/eval"
	"modeleval/logger"
	"modeleval/ml"
	"modeleval/watcher"
)

type app struct {
	config    *config.Config
	logger    *zap.Logger
	loader    *ml.Loader
	evaluator *eval.Evaluator
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	watch := flag.Bool("watch", false, "re-evaluate when model or test set files change")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	loader, err := ml.NewLoader(cfg.Evaluation.CacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize model loader: %v", err)
	}

	a := &app{
		config: cfg,
		logger: zl,
		loader: loader,
		evaluator: eval.New(
			eval.WithLogger(zl),
			eval.WithConcurrency(cfg.Evaluation.Concurrency),
		),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := a.run(ctx, *watch)
	stop()
	_ = zl.Sync()
	os.Exit(code)
}

func (a *app) run(ctx context.Context, watch bool) int {
	if err := a.evaluate(ctx); err != nil {
		a.logger.Error("evaluation failed", zap.Error(err))
		if !watch {
			return 1
		}
	}
	if !watch {
		return 0
	}

	w, err := watcher.New(a.config.WatchPaths(), watcher.WithLogger(a.logger))
	if err != nil {
		a.logger.Error("failed to start watcher", zap.Error(err))
		return 1
	}
	defer w.Close()

	a.logger.Info("watching for changes", zap.Strings("paths", a.config.WatchPaths()))
	err = w.Run(ctx, func(changed []string) {
		for _, path := range changed {
			a.loader.Invalidate(path)
		}
		a.logger.Info("files changed, re-evaluating", zap.Strings("paths", changed))
		if err := a.evaluate(ctx); err != nil {
			a.logger.Error("evaluation failed", zap.Error(err))
		}
	})
	if err != nil {
		a.logger.Error("watcher stopped", zap.Error(err))
		return 1
	}
	return 0
}

func (a *app) evaluate(ctx context.Context) error {
	testSet, err := ml.ReadTestSetFile(a.config.TestSet.Path, a.config.TestSet.Target)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(a.loader, a.config.Models)
	if err != nil {
		return err
	}
	_, err = a.evaluator.Run(ctx, testSet.Features, testSet.Targets, registry)
	return err
}

func buildRegistry(loader *ml.Loader, models []config.ModelConfig) (*ml.Registry, error) {
	registry := ml.NewRegistry()
	for _, m := range models {
		model, err := loader.Load(m.Type, m.Path)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(m.Name, model); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
