// Package domain defines the core business types for the notification
// dispatch pipeline.
//
// Types in this package are pure value objects with no behavior beyond small
// normalization helpers — no database dependencies, no HTTP concerns. They
// are the shared language between handlers, services, and repositories.
package domain
