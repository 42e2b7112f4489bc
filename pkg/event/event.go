// Package event models the records flowing through the export pipeline.
//
// A Record is an ordered mapping from field name to a tagged Value, so
// serializers can switch on the value kind instead of doing runtime type
// inspection, and so field order survives a decode/encode round trip.
package event

// Kind discriminates the variants a Value can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// Value is a tagged variant covering the JSON value space. The zero
// Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  *Record
	arr  []Value
}

func Null() Value            { return Value{kind: KindNull} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Object(r *Record) Value { return Value{kind: KindObject, obj: r} }
func Array(vs []Value) Value { return Value{kind: KindArray, arr: vs} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) Str() string     { return v.str }
func (v Value) Num() float64    { return v.num }
func (v Value) Bool() bool      { return v.b }
func (v Value) Object() *Record { return v.obj }
func (v Value) Array() []Value  { return v.arr }

// Record is an insertion-ordered field map. It is owned by the pipeline
// for the duration of one export call and must not be mutated after
// being handed off.
type Record struct {
	keys   []string
	fields map[string]Value
}

const defaultFieldCapacity = 8 // typical top-level field count for an event

func NewRecord() *Record {
	return &Record{fields: make(map[string]Value, defaultFieldCapacity)}
}

// Set adds a field or replaces an existing one in place, keeping its
// original position.
func (r *Record) Set(name string, v Value) {
	if _, exists := r.fields[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = v
}

func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

func (r *Record) Len() int { return len(r.keys) }

// Keys returns the field names in insertion order. The returned slice
// is shared; callers must not modify it.
func (r *Record) Keys() []string { return r.keys }

// Name returns the event name field, or "" when absent or non-string.
func (r *Record) Name() string {
	if v, ok := r.fields["event"]; ok && v.kind == KindString {
		return v.str
	}
	return ""
}

// DistinctID returns the identity field. Falls back to "person" for
// payloads that carry identity under that name.
func (r *Record) DistinctID() string {
	for _, field := range []string{"distinct_id", "person"} {
		if v, ok := r.fields[field]; ok && v.kind == KindString {
			return v.str
		}
	}
	return ""
}
