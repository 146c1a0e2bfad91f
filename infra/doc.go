// Package infra contains technical adapters such as the solar position
// provider, MQTT publishers, metrics exporters and the run store. These
// packages should depend only on the interfaces defined in the core packages.
package infra
