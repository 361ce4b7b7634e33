// Package services implements the business logic layer of agroinvest. It
// sits between the HTTP handlers and the engine packages (selection,
// aggregation, gaps, roi) and owns the cross-cutting concerns of each
// operation: tracing spans, business metrics and structured logging.
//
// # Available Services
//
//   - InvestmentService: selection, rollups, overview, gap analysis,
//     opportunity ranking, ROI, sensitivity sweeps, batch ROI and reports
//   - HealthService: liveness, readiness and version information
//
// # Error Handling
//
// Services return errors the HTTP layer maps to problem details:
//
//   - *errors.AppError of type NOT_FOUND for an unknown opportunity
//   - *roi.InvalidAssumptionError when assumptions make an ROI undefined
//   - roi.ErrUnknownParameter for an unsupported sensitivity parameter
//   - context errors when a batch is cancelled
//
// # Concurrency
//
// The dataset is immutable once loaded, so a single InvestmentService is
// shared by all requests. Batch ROI fans out on an errgroup bounded by
// the configured concurrency and keeps results in request order.
package services
