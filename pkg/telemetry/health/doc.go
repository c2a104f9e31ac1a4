// Package health provides liveness, readiness and version endpoints.
//
// Liveness (/health) answers 200 whenever the process can serve HTTP.
// Readiness (/ready) runs the registered checks concurrently, each bounded
// by the checker timeout:
//
//   - config: fails until a configuration is loaded
//   - endpoint:<segment>: degraded when the selector has no live endpoint
//     cached for the segment
//
// A degraded segment does not fail readiness, since the selector always
// degrades to the registry default. Only unhealthy checks produce 503.
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("config", health.ConfigCheck(config.GetConfig))
//	checker.RegisterSelectionChecks(selector)
//
//	router.Get("/health", checker.LivenessHandler())
//	router.Get("/ready", checker.ReadinessHandler())
//	router.Get("/version", health.VersionHandler(health.NewVersionInfo(version, commit, buildTime)))
package health
