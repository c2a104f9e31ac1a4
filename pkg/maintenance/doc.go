// Package maintenance runs the gateway's background jobs on cron schedules:
//
//   - quota-sweep removes admission records whose window has ended
//     (admission.sweep_schedule, default "@every 5m")
//   - endpoint-prewarm forces a probe round per segment
//     (selector.prewarm_schedule, disabled by default)
//
// Usage:
//
//	scheduler := maintenance.NewScheduler()
//	_ = scheduler.Add(ctx, maintenance.SweepJob(controller, cfg.Admission.SweepSchedule))
//	_ = scheduler.Add(ctx, maintenance.PrewarmJob(selector, cfg.Selector.PrewarmSchedule))
//	scheduler.Start(ctx)
//	defer scheduler.Stop()
package maintenance
