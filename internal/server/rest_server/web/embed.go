// Package web carries the static dashboard client. The dashboard is an
// external collaborator of the telemetry pipeline: it consumes /latest by
// polling and renders the JSON window; the server only hands out the asset.
package web

import _ "embed"

//go:embed dashboard.html
var DashboardHTML []byte
