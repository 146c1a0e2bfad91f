// Package metrics defines the sinks receiving the outcome of shadow runs.
// A run emits one ShadowRunEvent per tilt angle. Sinks are created from
// configuration through the registry in factory.go; several configured sinks
// are combined into a MultiSink automatically.
package metrics
