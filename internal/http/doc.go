// Package http exposes the publish pipeline over HTTP.
//
// Routes:
//   - POST /blog/create: publish a post from a multipart form or a JSON body
//   - GET /health: liveness probe
//   - GET /metrics: prometheus exposition, when a metrics handler is wired
//
// Host applications register the routes on their own mux.
package http
