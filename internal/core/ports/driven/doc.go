// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// Services in internal/core/services depend on these interfaces only;
// concrete implementations live under internal/adapters/driven and are
// injected at the composition root.
package driven
