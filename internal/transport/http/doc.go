// Package http implements the HTTP handlers of the MarketPulse service.
// Handlers stay thin: they parse query parameters, call a service and
// render the result with go-chi/render.
//
// # Responses
//
// Collection endpoints answer with an envelope:
//
//	{"status": "success", "data": [...], "count": 8}
//
// Errors are RFC 7807 problem documents produced by internal/errors:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Invalid value for parameter \"region\"",
//	    "instance": "/api/market/weekly",
//	    "error_code": "INVALID_PARAMETER"
//	}
//
// # Routes
//
//	GET  /api/market/status
//	GET  /api/market/regions
//	GET  /api/market/weekly?region=&recent=
//	GET  /api/market/monthly?region=&recent=
//	GET  /api/market/latest?granularity=
//	GET  /api/market/regions/{region}/summary?granularity=
//	GET  /api/market/export.csv?granularity=&display=
//	GET  /api/market/export.xlsx?display=
//	POST /api/market/refresh
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
package http
