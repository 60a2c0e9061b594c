package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	instance *zap.Logger
	once     sync.Once
)

type Config struct {
	Development bool
}

func New(cfg Config) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		if cfg.Development {
			instance, err = zap.NewDevelopment()
		} else {
			instance, err = zap.NewProduction()
		}
	})
	return instance, err
}
