package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
)

// Job names.
const (
	JobQuotaSweep      = "quota-sweep"
	JobEndpointPrewarm = "endpoint-prewarm"
)

// Sweeper removes expired quota records.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Refresher forces a probe round for a segment.
type Refresher interface {
	Refresh(ctx context.Context, segment routing.Segment) routing.Selection
}

// SweepJob removes quota records whose window has ended.
func SweepJob(sweeper Sweeper, schedule string) Job {
	return Job{
		Name:     JobQuotaSweep,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			removed, err := sweeper.Sweep(ctx, time.Now())
			if err != nil {
				return err
			}
			if removed > 0 {
				slog.Default().Info("quota records swept", "component", "scheduler", "removed", removed)
			}
			return nil
		},
	}
}

// PrewarmJob probes every segment and caches the winners so that user
// requests find a warm cache. It also runs once at start.
func PrewarmJob(refresher Refresher, schedule string) Job {
	return Job{
		Name:       JobEndpointPrewarm,
		Schedule:   schedule,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			for _, segment := range routing.Segments {
				sel := refresher.Refresh(ctx, segment)
				if sel.Fallback {
					slog.Default().Warn("prewarm found no live endpoint",
						"component", "scheduler",
						"segment", segment,
					)
				}
			}
			return nil
		},
	}
}
