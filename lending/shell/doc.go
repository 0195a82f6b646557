// Package shell contains the infrastructure shared by the lending feature slices:
// mapping between domain events and storable events, event metadata, the retry loop
// of command handlers, handler results and the observability helpers used by the
// wrappers in package observable.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'application' or 'adapter' layer.
package shell
