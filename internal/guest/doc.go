// Package guest synthesizes small core WebAssembly modules that drive a
// host module from the guest side.
//
// A synthesized guest imports a set of host functions, exports its linear
// memory as "memory", and exports one trampoline per import named
// "call_<import>" that forwards its parameters unchanged. Tests and
// examples use these guests to exercise host functions through a real
// wazero call path instead of invoking Go callbacks directly.
package guest
