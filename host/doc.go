// Package host registers the "avro.legacy" host module with a wazero
// runtime so WebAssembly guests can create schemas and values, reuse value
// handles, and encode or decode data.
//
// Guests see schemas and values as i32 handles from a resource table.
// Strings and byte buffers travel as (ptr, len) pairs in the guest's
// exported "memory". Functions that write into guest memory take a
// capacity and always return the full length, so a guest can retry with a
// larger buffer when the result exceeds the capacity. A failing call
// returns 0 handles or -1 and records the error; last_error copies its
// message into guest memory.
//
// # Exports
//
//	schema(ptr, len) -> (handle, token)
//	schema_handle(handle) -> (handle, token)
//	new_raw_schema(token) -> (handle, token)
//	schema_type(handle) -> type
//	schema_name(handle, ptr, cap) -> len
//	schema_new_raw_value(schema, value) -> value
//	schema_drop(handle)
//	value_drop(handle)
//	value_encode(handle, ptr, cap) -> len
//	value_to_json(handle, ptr, cap) -> len
//	value_decode(handle, ptr, len) -> status
//	value_from_json(handle, ptr, len) -> status
//	last_error(ptr, cap) -> len
//
// schema_new_raw_value with value 0 constructs a fresh value handle; with a
// live value handle it releases that handle's value, constructs a new one
// in its place and returns the same handle.
//
// new_raw_schema adopts the reference behind token: the guest must hold a
// reference it is giving up, such as one obtained from the embedding Go
// program.
package host
