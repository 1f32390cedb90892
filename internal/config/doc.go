// Package config loads MarketPulse configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. The YAML config file (config.yaml or configs/config.yaml, or the
//	   path in MARKETPULSE_CONFIG_FILE)
//	3. A .env file in the working directory, if present
//	4. Environment variables
//
// # Environment Variables
//
// Environment variables use the MARKETPULSE_ prefix followed by the
// section and field name:
//
//	MARKETPULSE_SERVER_PORT=8080
//	MARKETPULSE_LOGGING_LEVEL=debug
//	MARKETPULSE_FEEDS_SOURCES_FILE=config/sources.yaml
//	MARKETPULSE_FETCH_TIMEOUT=20s
//	MARKETPULSE_FETCH_SHEETS_API_KEY=...
//
// # Feed Sources
//
// Feed locations are not compiled in. They are read from a separate YAML
// sources file (see LoadSources) that maps every region to a weekly and a
// monthly locator and names the priority region.
package config
