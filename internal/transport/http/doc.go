// Package http implements the HTTP handlers of the agroinvest API. Handlers
// stay thin: they decode and validate requests, call the investment service
// and render JSON.
//
// # Routes
//
//	GET  /api/dataset                         dataset summary
//	POST /api/selection                       selection counts and warnings
//	POST /api/rollup                          country and crop rollups
//	POST /api/overview?top=N                  overview and price trends
//	POST /api/gaps                            gap findings
//	POST /api/opportunities                   ranked opportunities
//	GET  /api/opportunities/{id}              one opportunity
//	POST /api/opportunities/{id}/roi          ROI scenario
//	POST /api/opportunities/{id}/sensitivity  one-parameter sweep
//	POST /api/roi/batch                       ROI for many opportunities
//	POST /api/report?format=json|xlsx|csv     full report download
//
// Selection endpoints accept an optional SelectionRequest body; an empty
// body selects the whole dataset.
//
// # Error Handling
//
// All errors are RFC 7807 problem details rendered by the errors package:
//
//	{
//	    "type": "/errors/roi/invalid-assumption",
//	    "title": "Invalid Assumption",
//	    "status": 422,
//	    "detail": "opportunity zm-oil: invalid assumption annual_cost_ratio=1.2: must be below 1",
//	    "opportunity_id": "zm-oil"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// InvestmentServiceInterface.
package http
