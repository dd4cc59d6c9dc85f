// Package sinks provides cookiehook.Sink implementations.
//
// LoggerSink writes one log line per InvocationRecord, optionally followed by the call-origin frames.
// JSONLinesSink writes one JSON object per line to an io.Writer.
// MultiSink fans a record out to several sinks.
//
// All sinks are safe for concurrent use.
package sinks
