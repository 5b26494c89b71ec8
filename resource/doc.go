// Package resource provides the handle table that exposes host objects to
// WebAssembly guests.
//
// Guests never see Go pointers. Each schema or value handed across the
// boundary is stored in a UnifiedTable and the guest receives a small
// integer Handle. Handle 0 is reserved and always invalid.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	h := table.Insert(resource.TypeSchema, schemaHandle)
//
//	sh, ok := resource.Lookup[*binding.SchemaHandle](table, h, resource.TypeSchema)
//
//	table.Remove(h) // runs Drop on the stored value
//
// # Type Tags
//
// Every handle carries a TypeID. GetTyped and Lookup refuse a handle whose
// tag does not match, so a value handle can never be used where a schema
// handle is expected even though both are plain integers to the guest.
//
// # Finalizers
//
// Values implementing Dropper are finalized exactly once: when their handle
// is removed, or when the table is closed. Slots are recycled, so a stale
// handle may later name a different object.
//
// # Observers
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    if e.Type == resource.EventDropped {
//	        logger.Debug("dropped", zap.Uint32("handle", uint32(e.Handle)))
//	    }
//	}))
package resource
