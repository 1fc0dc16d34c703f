// Package logging builds the zerolog loggers used across chronoline and carries
// them, together with a per-invocation trace ID, through context.Context.
package logging
