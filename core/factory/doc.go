// Package factory instantiates pluggable modules, such as the metrics sinks,
// from configuration entries of the form
//
//	sinks:
//	  - type: sqlite
//	    conf:
//	      path: runs.db
//
// Each module package registers a Factory under its type name; the factory
// decodes conf into its own settings struct with Decode and returns the
// implementation.
package factory
