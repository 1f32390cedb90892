// Package app wires the MarketPulse service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Load the feed sources file
//	4. Create the snapshot store, ingestion, market and health services
//	5. Start the WebSocket hub and relay snapshots to it
//	6. Build the chi router and HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests,
// cancels background ingestion, closes WebSocket clients and flushes
// telemetry. The package never calls os.Exit.
package app
