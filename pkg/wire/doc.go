// Package wire defines the transport snapshot schema for polocloud entities.
//
// Every entity crossing a node boundary travels as a snapshot: a flat,
// mutable-free value whose field names follow the external schema
// (minimumMemory, percentageToStartNewService, serverType, ...). Snapshots
// are encoded as CBOR using Core Deterministic Encoding, so the same logical
// snapshot always produces the same bytes.
//
// # Required fields
//
// Decoding goes through Unmarshal, which first checks that every required
// key of the target snapshot type is present before decoding into the
// struct. A missing key yields a fault.ClassSchemaViolation error naming the
// entity kind and the field:
//
//	var snap wire.GroupSnapshot
//	if err := wire.Unmarshal(data, &snap); err != nil {
//	    // fault.IsSchemaViolation(err) == true for a missing "minimumMemory"
//	}
//
// # Frames
//
// When the kind of a payload is not known ahead of time, snapshots are
// wrapped in a Frame carrying the entity Kind tag next to the encoded body.
package wire
