// Package config loads and validates the YAML configuration of a polocloud
// node.
//
// A node configuration groups the telemetry settings, the event bus delivery
// mode, the storage backend behind the providers and the module directory:
//
//	telemetry:
//	  serviceName: polocloud
//	  logging:
//	    level: debug
//	events:
//	  mode: async
//	store:
//	  driver: sqlite
//	  sqlite:
//	    path: data/polocloud.db
//	modules:
//	  dir: modules
//
// Load starts from Default, so a file only needs the values it changes.
package config
