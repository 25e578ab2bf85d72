package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"espetaria/internal/repositories"
)

// Scheduler owns the background jobs of the service.
type Scheduler struct {
	scheduler gocron.Scheduler
}

func NewScheduler(inventoryRepo repositories.InventoryRepository, lowStockInterval time.Duration) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	lowStock := NewLowStockJob(inventoryRepo)
	_, err = scheduler.NewJob(
		gocron.DurationJob(lowStockInterval),
		gocron.NewTask(lowStock.Run, context.Background()),
		gocron.WithName("low-stock-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{scheduler: scheduler}, nil
}

func (s *Scheduler) Start() {
	zap.L().Info("starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	zap.L().Info("stopping background job scheduler")
	return s.scheduler.Shutdown()
}
