package health

import (
	"context"
	"fmt"
	"time"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/config"
	repository "github.com/Rwadhwa18/grocery-bazaar-hub/internal/repositories"
	"github.com/hellofresh/health-go/v5"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

type Endpoints struct {
	Products repository.ProductRepository
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {
	checks := []health.Config{
		{
			Name:      "catalog",
			Timeout:   time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				if endpoints == nil || endpoints.Products == nil {
					return fmt.Errorf("product repository is not initialized")
				}
				categories, err := endpoints.Products.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to read catalog: %w", err)
				}
				if len(categories) == 0 {
					return fmt.Errorf("catalog has no categories")
				}
				return nil
			},
		},
	}

	if cfg.RedisConnect.Enabled {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "grocery-bazaar-hub",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
