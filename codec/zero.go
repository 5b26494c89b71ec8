package codec

import (
	"math/big"
	"strings"

	"github.com/linkedin/goavro/v2"
)

// zeroNative returns a constructor for the initial datum of a new value.
// Record fields without a default get their own zero so a fresh record
// encodes; fields with a default are left for the codec to fill in.
func zeroNative(s *Schema) func() any {
	if s.node == nil {
		t := s.typ
		return func() any { return primitiveZero(t) }
	}
	root := s.node
	z := newZeroBuilder(root)
	return func() any { return z.zero(root, "") }
}

func primitiveZero(t Type) any {
	switch t {
	case TypeBoolean:
		return false
	case TypeInt:
		return int32(0)
	case TypeLong:
		return int64(0)
	case TypeFloat:
		return float32(0)
	case TypeDouble:
		return float64(0)
	case TypeString:
		return ""
	case TypeBytes:
		return []byte{}
	default:
		return nil
	}
}

type namedNode struct {
	obj map[string]any
	ns  string
}

// zeroBuilder walks decoded schema JSON. Named types are collected up front
// because a reference may point into a branch the zero datum never visits.
type zeroBuilder struct {
	named map[string]namedNode
	open  map[string]bool
}

func newZeroBuilder(root any) *zeroBuilder {
	z := &zeroBuilder{
		named: make(map[string]namedNode),
		open:  make(map[string]bool),
	}
	z.collect(root, "")
	return z
}

// qualify resolves a declared name against its namespace attribute and the
// enclosing namespace. It returns the full name and the namespace the
// type's children inherit.
func qualify(obj map[string]any, enclosing string) (string, string) {
	name, _ := obj["name"].(string)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name, name[:i]
	}
	ns, ok := obj["namespace"].(string)
	if !ok {
		ns = enclosing
	}
	if ns == "" {
		return name, ""
	}
	return ns + "." + name, ns
}

func isNamedType(t string) bool {
	switch t {
	case "record", "error", "enum", "fixed":
		return true
	}
	return false
}

func (z *zeroBuilder) collect(node any, ns string) {
	switch n := node.(type) {
	case []any:
		for _, branch := range n {
			z.collect(branch, ns)
		}
	case map[string]any:
		t, ok := n["type"].(string)
		if !ok {
			z.collect(n["type"], ns)
			return
		}
		switch {
		case isNamedType(t):
			full, inner := qualify(n, ns)
			z.named[full] = namedNode{obj: n, ns: inner}
			fields, _ := n["fields"].([]any)
			for _, f := range fields {
				if fm, ok := f.(map[string]any); ok {
					z.collect(fm["type"], inner)
				}
			}
		case t == "array":
			z.collect(n["items"], ns)
		case t == "map":
			z.collect(n["values"], ns)
		}
	}
}

func (z *zeroBuilder) lookup(name, ns string) (string, namedNode, bool) {
	if !strings.Contains(name, ".") && ns != "" {
		if nn, ok := z.named[ns+"."+name]; ok {
			return ns + "." + name, nn, true
		}
	}
	nn, ok := z.named[name]
	return name, nn, ok
}

func (z *zeroBuilder) zero(node any, ns string) any {
	switch n := node.(type) {
	case string:
		if t, ok := PrimitiveType(n); ok {
			return primitiveZero(t)
		}
		if full, nn, ok := z.lookup(n, ns); ok {
			return z.namedZero(full, nn)
		}
	case []any:
		if len(n) > 0 {
			return z.unionZero(n[0], ns)
		}
	case map[string]any:
		return z.objectZero(n, ns)
	}
	return nil
}

func (z *zeroBuilder) objectZero(obj map[string]any, ns string) any {
	t, ok := obj["type"].(string)
	if !ok {
		return z.zero(obj["type"], ns)
	}
	if lt, _ := obj["logicalType"].(string); lt == "decimal" && (t == "bytes" || t == "fixed") {
		return new(big.Rat)
	}
	switch {
	case isNamedType(t):
		full, inner := qualify(obj, ns)
		return z.namedZero(full, namedNode{obj: obj, ns: inner})
	case t == "array":
		return []any{}
	case t == "map":
		return map[string]any{}
	}
	return z.zero(t, ns)
}

func (z *zeroBuilder) namedZero(full string, nn namedNode) any {
	obj := nn.obj
	switch obj["type"] {
	case "enum":
		syms, _ := obj["symbols"].([]any)
		if len(syms) > 0 {
			first, _ := syms[0].(string)
			return first
		}
		return ""
	case "fixed":
		if lt, _ := obj["logicalType"].(string); lt == "decimal" {
			return new(big.Rat)
		}
		size, _ := obj["size"].(float64)
		return make([]byte, int(size))
	}

	// A record reached again through its own fields has no finite zero.
	if z.open[full] {
		return nil
	}
	z.open[full] = true
	defer delete(z.open, full)

	rec := make(map[string]any)
	fields, _ := obj["fields"].([]any)
	for _, f := range fields {
		fm, ok := f.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := fm["default"]; ok {
			continue
		}
		name, _ := fm["name"].(string)
		rec[name] = z.zero(fm["type"], nn.ns)
	}
	return rec
}

func (z *zeroBuilder) unionZero(branch any, ns string) any {
	name := z.branchName(branch, ns)
	if name == "null" {
		return nil
	}
	return goavro.Union(name, z.zero(branch, ns))
}

// branchName returns the key goavro uses for a union member in native form.
func (z *zeroBuilder) branchName(branch any, ns string) string {
	switch b := branch.(type) {
	case string:
		if _, ok := PrimitiveType(b); ok {
			return b
		}
		full, _, _ := z.lookup(b, ns)
		return full
	case map[string]any:
		t, ok := b["type"].(string)
		if !ok {
			return z.branchName(b["type"], ns)
		}
		if isNamedType(t) {
			full, _ := qualify(b, ns)
			return full
		}
		if lt, ok := b["logicalType"].(string); ok && knownLogical(t, lt) {
			return t + "." + lt
		}
		return t
	}
	return ""
}

func knownLogical(t, lt string) bool {
	switch t + "." + lt {
	case "long.timestamp-millis", "long.timestamp-micros", "int.time-millis",
		"long.time-micros", "int.date", "bytes.decimal":
		return true
	}
	return false
}
