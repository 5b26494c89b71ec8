// Package binding manages the lifecycle and identity of schema and value
// handles handed out to a host environment.
//
// A SchemaHandle owns one reference to a codec.Schema and, after the first
// value is constructed from it, one reference to the interface derived from
// that schema. A ValueHandle owns (or borrows) one codec.Value and can be
// reset in place so its identity survives repeated decode/encode cycles:
//
//	m := binding.New(codec.New(codec.DefaultOptions()))
//
//	sh, _, err := m.Schema(`{"type":"record","name":"User","fields":[...]}`)
//	if err != nil {
//	    return err
//	}
//	defer sh.Release()
//
//	v, err := sh.NewRawValue(nil) // fresh, owning
//	if err != nil {
//	    return err
//	}
//	defer v.Release()
//
//	for _, record := range records {
//	    if _, err := sh.NewRawValue(v); err != nil { // releases, then reconstructs
//	        return err
//	    }
//	    if _, err := v.Value().DecodeBinary(record); err != nil {
//	        return err
//	    }
//	}
//
// The package is not safe for concurrent use and performs no logging.
// Callers serialize access, as the host package does with its module mutex.
package binding
