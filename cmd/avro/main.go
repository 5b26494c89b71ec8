// Command avro inspects Avro schemas, converts data between Avro JSON and
// binary, and runs WebAssembly guests against the avro.legacy host module.
package main

func main() {
	execute()
}
