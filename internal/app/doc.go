// Package app wires the dashboard server together and owns its lifecycle.
//
// New builds every component from a config.Config: the dataset loader
// (local directory or Kaggle download), the session store, the dashboard
// and health services, the websocket stream and the chi router with its
// middleware chain. Nothing is loaded at construction time.
//
// Run serves HTTP and, in the same errgroup, loads the dataset once,
// sweeps expired sessions and waits for cancellation:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Until the load finishes /api/health/ready answers 503. A failed load is
// not fatal; dashboard routes report the loader diagnostic as problem
// details instead.
//
// Shutdown drains HTTP requests, closes websocket clients, flushes
// telemetry and closes the log file. Errors from each step are joined.
package app
