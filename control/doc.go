// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection layer for
// hioload-pool.
//
// Provides concurrent-safe state handling primitives including:
//   - Pool configuration loading (YAML files, HIOPOOL_* environment)
//   - A snapshot metrics registry and a Prometheus collector over pool stats
//   - Debug probe registration and state export
package control
