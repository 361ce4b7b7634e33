// Package app wires the agroinvest API server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, config file and AGRO_* environment
//  2. Initialize logging and OpenTelemetry
//  3. Load the dataset (file or embedded sample)
//  4. Build the investment and health services
//  5. Set up the chi router and middleware
//  6. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests and
// flushes telemetry within Server.ShutdownTimeout.
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit, leaving exit codes to main.
package app
