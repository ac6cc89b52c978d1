package tracking

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

type SimulatorConfig struct {
	CourierInterval time.Duration
	DeliveryDelay   time.Duration
	OriginLat       float64
	OriginLng       float64
	Jitter          float64
}

// DefaultSimulatorConfig drives a courier around central Mumbai.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		CourierInterval: 10 * time.Second,
		DeliveryDelay:   60 * time.Second,
		OriginLat:       19.0760,
		OriginLng:       72.8777,
		Jitter:          0.005,
	}
}

// Simulator fakes real-time delivery for one shipped order: a periodic courier
// sample and a single delayed delivery. Callbacks run on the simulator's
// goroutine; the owner is responsible for locking whatever they touch.
type Simulator struct {
	cfg     SimulatorConfig
	sample  func(lat, lng float64, elapsedMinutes int)
	deliver func()

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSimulator(cfg SimulatorConfig, sample func(lat, lng float64, elapsedMinutes int), deliver func()) *Simulator {
	return &Simulator{
		cfg:     cfg,
		sample:  sample,
		deliver: deliver,
		stop:    make(chan struct{}),
	}
}

// Start runs until Stop is called, ctx is done or the delivery fires.
func (s *Simulator) Start(ctx context.Context) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.cfg.CourierInterval)
		defer ticker.Stop()

		delivery := time.NewTimer(s.cfg.DeliveryDelay)
		defer delivery.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.sample(
					s.cfg.OriginLat+s.offset(),
					s.cfg.OriginLng+s.offset(),
					rand.IntN(2),
				)
			case <-delivery.C:
				s.deliver()
				return
			}
		}
	}()
}

// Stop clears both timers and waits for the goroutine to exit. It is safe to
// call more than once, but not from inside a callback.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Simulator) offset() float64 {
	return rand.Float64()*2*s.cfg.Jitter - s.cfg.Jitter
}
