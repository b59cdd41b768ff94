// Package fsroute is a file-system-driven HTTP routing core: route
// discovery, a mutable registry with hot-reload, a path matcher, a
// composable middleware pipeline, schema-driven validation, and a
// streaming multipart parser.
//
// The transport (HTTP/1.1, HTTP/2), the terminal-line interface, and
// configuration-file loading are external collaborators; fsroute only
// assembles the request-handling core that sits behind them.
package fsroute
