// Package module defines the contract of pluggable node extensions and the
// host that drives their lifecycle.
//
// A module is described by a metadata file (module.yaml) naming its id and
// the main entry point it was registered under. The Host resolves the entry
// point against registered factories, calls Enable exactly once on admission
// and Disable exactly once on unload or shutdown. Every subscription a
// module makes through its Environment is released when it is unloaded.
package module
