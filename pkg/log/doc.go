package log

// Package log is a very small opinionated wrapper around Go's standard
// library logging facilities, used by both the gateway and the RPC client
// to tag every line with its originating component.
//
// Key Features
//
//   - Per-component loggers via ForService(name)
//   - Automatic prefix in every line: `[name>]`
//   - Convenience level helpers: Infof, Warnf, Errorf, Debugf
//   - Debug logging can be enabled globally (SetGlobalDebug) or per component
//   - Uses the standard library *log.Logger* under the hood (no external deps)
//   - Central output writer (SetOutput) that updates existing loggers
//
// Non-Goals
//
//   - Structured / JSON logging
//   - Log sampling, rotation, or asynchronous buffering
//
// Thread Safety
//
// All exported functions are safe for concurrent use; internally the package
// relies on sync.Map and atomic primitives.
