// Package driving provides interfaces exposed to external actors
// (primary/inbound ports). The CLI adapter drives the core through
// these interfaces only.
package driving
