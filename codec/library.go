package codec

import (
	"github.com/linkedin/goavro/v2"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/wippyai/avro-runtime/errors"
)

// Token is a raw, non-owning identity for a live schema.
// Token 0 is reserved and never identifies a schema.
type Token uint32

// Options configures a Library.
type Options struct {
	// Logger overrides the package logger when set.
	Logger *zap.Logger
	// MaxValues caps the number of live values. Construction fails with
	// KindAllocation once the cap is reached. Zero means unlimited.
	MaxValues int
}

// DefaultOptions returns default library configuration.
func DefaultOptions() Options {
	return Options{}
}

// Stats reports live object counts and cumulative operation counters.
// Interned primitive schemas are not counted as live schemas.
type Stats struct {
	LiveSchemas    int
	LiveInterfaces int
	LiveValues     int
	Parses         int64
	Derivations    int64
	Constructions  int64
}

// Library owns the schema token registry and the interned primitive schemas.
// Not safe for concurrent use.
type Library struct {
	logger     *zap.Logger
	schemas    map[Token]*Schema
	primitives [TypeNull + 1]*Schema
	opts       Options
	stats      Stats
	nextToken  Token
	nextValue  uint64
}

// New creates a library with its primitive schemas interned.
func New(opts Options) *Library {
	l := &Library{
		opts:    opts,
		logger:  opts.Logger,
		schemas: make(map[Token]*Schema),
	}
	if l.logger == nil {
		l.logger = Logger()
	}
	for _, t := range Primitives {
		s := &Schema{
			lib:    l,
			typ:    t,
			spec:   `"` + t.String() + `"`,
			refs:   1,
			static: true,
		}
		l.register(s)
		l.primitives[t] = s
	}
	return l
}

// Options returns the library configuration.
func (l *Library) Options() Options {
	return l.opts
}

// Stats returns a snapshot of the library counters.
func (l *Library) Stats() Stats {
	return l.stats
}

// Primitive returns a new reference to the interned schema for t.
func (l *Library) Primitive(t Type) (*Schema, error) {
	if !t.IsPrimitive() {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("%s is not a primitive type", t).
			Build()
	}
	return l.primitives[t].Incref(), nil
}

// Parse parses JSON schema text. The returned reference is owned by the
// caller. Parse failures carry the parser's message verbatim as the cause.
func (l *Library) Parse(text string) (*Schema, error) {
	l.stats.Parses++

	var node any
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return nil, errors.SchemaFailed(errors.PhaseParse, err)
	}

	compiled, err := goavro.NewCodec(text)
	if err != nil {
		return nil, errors.SchemaFailed(errors.PhaseParse, err)
	}

	s := &Schema{
		lib:      l,
		compiled: compiled,
		spec:     text,
		node:     node,
		refs:     1,
	}
	if err := s.introspect(node); err != nil {
		return nil, errors.SchemaFailed(errors.PhaseParse, err)
	}
	l.register(s)
	l.stats.LiveSchemas++

	l.logger.Debug("schema parsed",
		zap.Uint32("token", uint32(s.token)),
		zap.Stringer("type", s.typ),
		zap.String("name", s.TypeName()))
	return s, nil
}

// Lookup resolves a token to its live schema without taking a reference.
// It returns nil for token 0 and for tokens of freed schemas.
func (l *Library) Lookup(tok Token) *Schema {
	if tok == 0 {
		return nil
	}
	return l.schemas[tok]
}

// InterfaceFor derives a generic interface for s. The returned reference is
// owned by the caller. Each call derives a new interface; callers cache.
func (l *Library) InterfaceFor(s *Schema) (*Interface, error) {
	if s == nil || s.refs <= 0 {
		return nil, errors.SchemaFailed(errors.PhaseDerive, errors.Released(errors.PhaseDerive, "schema"))
	}

	if s.compiled == nil {
		compiled, err := goavro.NewCodec(s.spec)
		if err != nil {
			return nil, errors.SchemaFailed(errors.PhaseDerive, err)
		}
		s.compiled = compiled
	}

	iface := &Interface{
		lib:   l,
		codec: s.compiled,
		typ:   s.typ,
		name:  s.FullName(),
		zero:  zeroNative(s),
		refs:  1,
	}
	l.stats.Derivations++
	l.stats.LiveInterfaces++

	l.logger.Debug("interface derived",
		zap.Uint32("token", uint32(s.token)),
		zap.String("schema", iface.name))
	return iface, nil
}

func (l *Library) register(s *Schema) {
	l.nextToken++
	s.token = l.nextToken
	l.schemas[s.token] = s
}

func (l *Library) freeSchema(s *Schema) {
	if s.static {
		l.logger.Warn("static schema over-released",
			zap.Stringer("type", s.typ))
		s.refs = 1
		return
	}
	delete(l.schemas, s.token)
	l.stats.LiveSchemas--
	s.compiled = nil
	l.logger.Debug("schema freed", zap.Uint32("token", uint32(s.token)))
}

func (l *Library) freeInterface(i *Interface) {
	l.stats.LiveInterfaces--
	i.codec = nil
	l.logger.Debug("interface freed", zap.String("schema", i.name))
}

func (l *Library) freeValue(d *datum) {
	l.stats.LiveValues--
	d.native = nil
	if d.iface != nil {
		d.iface.Decref()
		d.iface = nil
	}
}
