// Package codec is a reference-counted Avro codec library built on goavro.
//
// It models the native objects a host binding manipulates:
//
//	Schema     - parsed or primitive schema, identified by a raw Token
//	Interface  - compiled reader/writer derived from a Schema
//	Value      - datum constructed from an Interface
//
// Every object carries an explicit reference count. Constructors return a
// reference owned by the caller; Incref adds one, Decref releases one, and
// the object is freed when the count reaches zero. Primitive schemas are
// interned by the Library and keep a base reference for its lifetime.
//
// # Lifecycle
//
//	lib := codec.New(codec.DefaultOptions())
//
//	schema, err := lib.Parse(`{"type":"record","name":"User","fields":[...]}`)
//	if err != nil {
//	    return err
//	}
//	defer schema.Decref()
//
//	iface, err := lib.InterfaceFor(schema)
//	if err != nil {
//	    return err
//	}
//	defer iface.Decref()
//
//	var v codec.Value
//	if err := iface.NewValue(&v); err != nil {
//	    return err
//	}
//	defer v.Decref()
//
//	rest, err := v.DecodeBinary(buf)
//
// Values hold a reference to their Interface, so they stay usable after the
// schema and interface references used to build them are released.
//
// # Threading
//
// A Library and the objects it creates are not safe for concurrent use.
// Callers sharing them across goroutines must serialize access externally.
package codec
