package event

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigFastest

// Marshal encodes a record as a single JSON object, fields in insertion
// order.
func Marshal(r *Record) ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	r.encode(stream)
	if stream.Error != nil {
		return nil, stream.Error
	}

	// The stream buffer is reused; hand the caller its own copy.
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// MarshalValue encodes a single value as JSON text. Used by the tabular
// serializer for per-cell encoding.
func MarshalValue(v Value) ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	v.encode(stream)
	if stream.Error != nil {
		return nil, stream.Error
	}

	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// Decode parses one JSON object into a Record, preserving the field
// order seen on the wire. Nested objects decode into nested Records.
func Decode(data []byte) (*Record, error) {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, fmt.Errorf("event: payload is not a JSON object")
	}
	r := decodeRecord(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("event: decode: %w", iter.Error)
	}
	return r, nil
}

func (r *Record) encode(stream *jsoniter.Stream) {
	stream.WriteObjectStart()
	for i, k := range r.keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(k)
		r.fields[k].encode(stream)
	}
	stream.WriteObjectEnd()
}

func (v Value) encode(stream *jsoniter.Stream) {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindString:
		stream.WriteString(v.str)
	case KindNumber:
		stream.WriteFloat64(v.num)
	case KindBool:
		stream.WriteBool(v.b)
	case KindObject:
		v.obj.encode(stream)
	case KindArray:
		stream.WriteArrayStart()
		for i, elem := range v.arr {
			if i > 0 {
				stream.WriteMore()
			}
			elem.encode(stream)
		}
		stream.WriteArrayEnd()
	}
}

func decodeRecord(iter *jsoniter.Iterator) *Record {
	r := NewRecord()
	for field := iter.ReadObject(); field != ""; field = iter.ReadObject() {
		r.Set(field, decodeValue(iter))
	}
	return r
}

func decodeValue(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		return String(iter.ReadString())
	case jsoniter.NumberValue:
		return Number(iter.ReadFloat64())
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NilValue:
		iter.ReadNil()
		return Null()
	case jsoniter.ObjectValue:
		return Object(decodeRecord(iter))
	case jsoniter.ArrayValue:
		var elems []Value
		for iter.ReadArray() {
			elems = append(elems, decodeValue(iter))
		}
		return Array(elems)
	default:
		iter.Skip()
		return Null()
	}
}
