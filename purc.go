// Package purc is the root of the PurC core runtime for Go: interned
// atoms, the shared error surface, and per-instance state. The variant
// data model lives in the variant package; the EJSON tokenizer in ejson;
// the shared tokenizer substrate in tkz; dynamic-object bindings in
// dvobjs.
package purc

// Version of the core runtime.
const Version = "0.9.0"
