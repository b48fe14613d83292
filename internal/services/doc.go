// Package services implements the business logic between the HTTP and
// websocket transports and the dashboard core.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//
// # Available Services
//
//	- DashboardService: loads the dataset once, owns the renderer and the
//	  session store, applies filter actions and view options, pages and
//	  exports the filtered table
//	- HealthService: liveness, readiness (dataset status) and version
//
// # Error Handling
//
// Dataset failures surface as the loader's AppError (SOURCE_UNAVAILABLE,
// SCHEMA_MISMATCH, AUTHENTICATION, NETWORK, UNEXPECTED) carrying the user
// facing diagnostic. Bad input is a VALIDATION AppError and unknown
// sessions are NOT_FOUND. An empty filtered view is not an error.
//
// # Testing
//
// Services are tested by mocking the dataset loader:
//
//	loader := new(MockLoader)
//	loader.On("Load", mock.Anything).Return(result)
//	svc := NewDashboardService(loader, store, limits, logger, nil)
package services
