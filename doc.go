// Package avroruntime provides reference-counted Avro schema and value
// handles for embedding in dynamically typed hosts, with a WebAssembly
// host module that exposes them to wazero guests.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	avroruntime/         Root package with the guest Memory interface
//	├── binding/         Schema and value handles, reuse protocol
//	├── codec/           Reference-counted schemas, interfaces and values over goavro
//	├── resource/        Handle table with type tags and finalizers
//	├── host/            "avro.legacy" host module for wazero guests
//	├── errors/          Structured error types for debugging
//	└── cmd/avro/        Command line tool
//
// # Quick Start
//
// Decode a stream of records, reusing one value:
//
//	m := binding.New(codec.New(codec.DefaultOptions()))
//
//	sh, _, err := m.Schema(schemaJSON)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sh.Release()
//
//	v, err := sh.NewRawValue(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Release()
//
//	for _, rec := range records {
//	    if _, err := sh.NewRawValue(v); err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := v.Value().DecodeBinary(rec); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(v.Value().Native())
//	}
//
// # Guests
//
// Register the host module before instantiating a guest that imports it:
//
//	h := host.New(codec.New(codec.DefaultOptions()), host.DefaultOptions())
//	defer h.Close()
//
//	if _, err := h.Instantiate(ctx, rt); err != nil {
//	    log.Fatal(err)
//	}
//	mod, err := rt.Instantiate(ctx, guestWasm)
//
// # Thread Safety
//
// codec, binding and resource reference counts are plain integers and are
// not safe for concurrent use. The host module serializes every guest call
// on its own mutex.
package avroruntime
