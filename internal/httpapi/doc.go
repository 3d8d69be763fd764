// Package httpapi serves invoice rendering over HTTP with gin.
//
// Routes:
//
//	GET  /                  service descriptor
//	GET  /health            liveness
//	POST /generate-invoice  render an invoice, respond with the document
//	GET  /metrics           Prometheus exposition, when metrics are enabled
//
// Failures are JSON bodies {"error": message, "code": kind} with a status
// derived from the error kind.
package httpapi
