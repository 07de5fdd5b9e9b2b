// Package shell wires the example domain to the runtime.
//
// It registers every command handler on a bus, collects the entity kinds into one registry,
// decodes YAML command batches, and maps storable events back to domain events for readers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
