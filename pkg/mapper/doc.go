// Package mapper converts polocloud entities between their three forms: the
// wire snapshot (package wire), the in-memory entity (package entity) and the
// structured document (package document).
//
// Every entity kind has four functions following the same naming scheme:
//
//	GroupFromWire(wire.GroupSnapshot) (*entity.Group, error)
//	GroupToWire(*entity.Group) wire.GroupSnapshot
//	GroupToDocument(*entity.Group) document.Document
//	GroupFromDocument(document.Document) (*entity.Group, error)
//
// The mappings are lossless: converting a well-formed snapshot to an entity
// and back yields an equal snapshot, and the same holds for documents.
// Missing required fields produce a fault.ClassSchemaViolation error naming
// the entity kind and field.
//
// For code that handles entities generically, each kind also has a Codec
// value (Groups, Services, Players, ...) and Lookup resolves codecs by kind
// tag from a fixed registry.
package mapper
