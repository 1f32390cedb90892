// Package services contains the MarketPulse business logic.
//
// IngestionService runs the two phase fetch cycle: the priority region's
// weekly and monthly feeds are fetched together and published with replace
// semantics, then every other region is fetched concurrently and appended.
// A failing feed is logged and contributes nothing; only failures outside
// the per-feed guards put the store into the degraded state.
//
// MarketService is the read side used by the HTTP handlers. It combines
// store snapshots with the analytics package.
//
// HealthService reports liveness, readiness and version information.
package services
