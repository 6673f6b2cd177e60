// Package protocol holds the wire message definitions for the Steam CM
// protocol and the unified authentication/econ services. No .proto sources
// or descriptor bytes were available to regenerate these with protoc, so
// the types here are hand-written in the pre-protoreflect "generated code"
// shape (plain struct + Get* accessors + Reset/String/ProtoMessage) and
// carry their own field-tag-driven codec built on protowire instead of the
// descriptor-based reflection google.golang.org/protobuf/proto normally
// relies on. See DESIGN.md for why.
package protocol

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every type in this package.
type Message interface {
	Reset()
	String() string
	ProtoMessage()
}

type wireKind int

const (
	kindVarint wireKind = iota
	kindZigzag
	kindFixed32
	kindFixed64
	kindBytes
	kindMessage
)

type fieldInfo struct {
	num   protowire.Number
	kind  wireKind
	index int
	typ   reflect.Type // element type for slices/pointers
}

// Marshal encodes m to its protobuf wire representation.
func Marshal(m Message) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, nil
	}
	var buf []byte
	if err := appendStruct(&buf, v.Elem()); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unmarshal decodes protobuf wire bytes into m.
func Unmarshal(data []byte, m Message) error {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Pointer {
		return fmt.Errorf("protocol: Unmarshal requires a pointer, got %T", m)
	}
	m.Reset()
	return readStruct(data, v.Elem())
}

func fieldsOf(t reflect.Type) []fieldInfo {
	var out []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("protobuf")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		if len(parts) < 2 {
			continue
		}
		num, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		var kind wireKind
		switch parts[0] {
		case "varint":
			kind = kindVarint
		case "zigzag32", "zigzag64":
			kind = kindZigzag
		case "fixed32":
			kind = kindFixed32
		case "fixed64":
			kind = kindFixed64
		case "bytes":
			kind = kindBytes
		case "group":
			kind = kindMessage
		default:
			kind = kindBytes
		}

		ft := sf.Type
		if ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct {
			kind = kindMessage
		}
		if ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.Pointer {
			kind = kindMessage
		}

		out = append(out, fieldInfo{num: protowire.Number(num), kind: kind, index: i, typ: ft})
	}
	return out
}

func appendStruct(buf *[]byte, v reflect.Value) error {
	for _, fi := range fieldsOf(v.Type()) {
		fv := v.Field(fi.index)
		if err := appendField(buf, fi, fv); err != nil {
			return fmt.Errorf("field %d: %w", fi.num, err)
		}
	}
	return nil
}

func appendField(buf *[]byte, fi fieldInfo, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.Pointer:
		if fv.IsNil() {
			return nil
		}
		return appendScalarOrMessage(buf, fi, fv.Elem())

	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte
			if fv.Len() == 0 {
				return nil
			}
			*buf = protowire.AppendTag(*buf, fi.num, protowire.BytesType)
			*buf = protowire.AppendBytes(*buf, fv.Bytes())
			return nil
		}
		for i := 0; i < fv.Len(); i++ {
			elem := fv.Index(i)
			if elem.Kind() == reflect.Pointer {
				if elem.IsNil() {
					continue
				}
				if err := appendScalarOrMessage(buf, fi, elem.Elem()); err != nil {
					return err
				}
				continue
			}
			if err := appendScalarOrMessage(buf, fi, elem); err != nil {
				return err
			}
		}
		return nil

	case reflect.String:
		if fv.Len() == 0 {
			return nil
		}
		*buf = protowire.AppendTag(*buf, fi.num, protowire.BytesType)
		*buf = protowire.AppendString(*buf, fv.String())
		return nil

	default:
		return appendScalarOrMessage(buf, fi, fv)
	}
}

func appendScalarOrMessage(buf *[]byte, fi fieldInfo, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		var sub []byte
		if err := appendStruct(&sub, v); err != nil {
			return err
		}
		*buf = protowire.AppendTag(*buf, fi.num, protowire.BytesType)
		*buf = protowire.AppendBytes(*buf, sub)
		return nil

	case reflect.String:
		if v.Len() == 0 {
			return nil
		}
		*buf = protowire.AppendTag(*buf, fi.num, protowire.BytesType)
		*buf = protowire.AppendString(*buf, v.String())
		return nil

	case reflect.Bool:
		*buf = protowire.AppendTag(*buf, fi.num, protowire.VarintType)
		n := uint64(0)
		if v.Bool() {
			n = 1
		}
		*buf = protowire.AppendVarint(*buf, n)
		return nil

	case reflect.Int32, reflect.Int64, reflect.Int:
		if fi.kind == kindZigzag {
			*buf = protowire.AppendTag(*buf, fi.num, protowire.VarintType)
			*buf = protowire.AppendVarint(*buf, protowire.EncodeZigZag(v.Int()))
			return nil
		}
		*buf = protowire.AppendTag(*buf, fi.num, protowire.VarintType)
		*buf = protowire.AppendVarint(*buf, uint64(v.Int()))
		return nil

	case reflect.Uint32, reflect.Uint64, reflect.Uint:
		switch fi.kind {
		case kindFixed32:
			*buf = protowire.AppendTag(*buf, fi.num, protowire.Fixed32Type)
			*buf = protowire.AppendFixed32(*buf, uint32(v.Uint()))
		case kindFixed64:
			*buf = protowire.AppendTag(*buf, fi.num, protowire.Fixed64Type)
			*buf = protowire.AppendFixed64(*buf, v.Uint())
		default:
			*buf = protowire.AppendTag(*buf, fi.num, protowire.VarintType)
			*buf = protowire.AppendVarint(*buf, v.Uint())
		}
		return nil

	case reflect.Float64:
		*buf = protowire.AppendTag(*buf, fi.num, protowire.Fixed64Type)
		*buf = protowire.AppendFixed64(*buf, math.Float64bits(v.Float()))
		return nil

	case reflect.Float32:
		*buf = protowire.AppendTag(*buf, fi.num, protowire.Fixed32Type)
		*buf = protowire.AppendFixed32(*buf, math.Float32bits(float32(v.Float())))
		return nil

	case reflect.Slice: // []byte nested inside a pointer-slice element won't hit here normally
		*buf = protowire.AppendTag(*buf, fi.num, protowire.BytesType)
		*buf = protowire.AppendBytes(*buf, v.Bytes())
		return nil

	default:
		return fmt.Errorf("unsupported field kind %s", v.Kind())
	}
}

func readStruct(data []byte, v reflect.Value) error {
	fields := fieldsOf(v.Type())
	byNum := make(map[protowire.Number]fieldInfo, len(fields))
	for _, fi := range fields {
		byNum[fi.num] = fi
	}

	for len(data) > 0 {
		num, wtyp, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		fi, known := byNum[num]
		if !known {
			skip := protowire.ConsumeFieldValue(num, wtyp, data)
			if skip < 0 {
				return protowire.ParseError(skip)
			}
			data = data[skip:]
			continue
		}

		consumed, err := readField(data, wtyp, fi, v.Field(fi.index))
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		data = data[consumed:]
	}
	return nil
}

func readField(data []byte, wtyp protowire.Type, fi fieldInfo, fv reflect.Value) (int, error) {
	switch wtyp {
	case protowire.VarintType:
		val, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		if fi.kind == kindZigzag {
			assignScalar(fi, fv, uint64(protowire.DecodeZigZag(val)))
		} else {
			assignScalar(fi, fv, val)
		}
		return n, nil

	case protowire.Fixed32Type:
		val, n := protowire.ConsumeFixed32(data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		assignScalar(fi, fv, uint64(val))
		return n, nil

	case protowire.Fixed64Type:
		val, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		assignScalar(fi, fv, val)
		return n, nil

	case protowire.BytesType:
		val, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		if err := assignBytesLike(fi, fv, val); err != nil {
			return 0, err
		}
		return n, nil

	default:
		n := protowire.ConsumeFieldValue(fi.num, wtyp, data)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		return n, nil
	}
}

// assignScalar handles varint/fixed32/fixed64-decoded values, including
// packed-repeated scalars (repeated fields are decoded one element per
// call from the wire, but callers that see a Bytes-wrapped packed blob go
// through assignBytesLike's packed path instead).
func assignScalar(fi fieldInfo, fv reflect.Value, raw uint64) {
	target := fv
	if fv.Kind() == reflect.Slice {
		elem := reflect.New(fv.Type().Elem()).Elem()
		setScalarValue(elem, raw)
		fv.Set(reflect.Append(fv, elem))
		return
	}
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		target = fv.Elem()
	}
	setScalarValue(target, raw)
}

func setScalarValue(target reflect.Value, raw uint64) {
	switch target.Kind() {
	case reflect.Bool:
		target.SetBool(raw != 0)
	case reflect.Int32, reflect.Int64, reflect.Int:
		target.SetInt(int64(raw))
	case reflect.Uint32, reflect.Uint64, reflect.Uint:
		target.SetUint(raw)
	case reflect.Float32:
		target.SetFloat(float64(math.Float32frombits(uint32(raw))))
	case reflect.Float64:
		target.SetFloat(math.Float64frombits(raw))
	}
}

func assignBytesLike(fi fieldInfo, fv reflect.Value, raw []byte) error {
	switch {
	case fi.kind == kindMessage:
		if fv.Kind() == reflect.Slice {
			elemType := fv.Type().Elem() // *SubMessage
			elem := reflect.New(elemType.Elem())
			if err := readStruct(raw, elem.Elem()); err != nil {
				return err
			}
			fv.Set(reflect.Append(fv, elem))
			return nil
		}
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return readStruct(raw, fv.Elem())

	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Uint8:
		// []byte field, possibly repeated-of-bytes handled as single append below
		b := make([]byte, len(raw))
		copy(b, raw)
		fv.SetBytes(b)
		return nil

	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
		s := string(raw)
		fv.Set(reflect.Append(fv, reflect.ValueOf(s)))
		return nil

	case fv.Kind() == reflect.Slice:
		// packed repeated scalar
		return readPacked(fi, fv, raw)

	case fv.Kind() == reflect.String:
		fv.SetString(string(raw))
		return nil

	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.String:
		s := string(raw)
		fv.Set(reflect.New(fv.Type().Elem()))
		fv.Elem().SetString(s)
		return nil

	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Slice:
		// *[]byte is not used in this package; fall through.
		return fmt.Errorf("unsupported pointer-to-slice field")

	default:
		b := make([]byte, len(raw))
		copy(b, raw)
		if fv.CanSet() && fv.Kind() == reflect.Slice {
			fv.SetBytes(b)
			return nil
		}
		return fmt.Errorf("unsupported bytes-like target kind %s", fv.Kind())
	}
}

func readPacked(fi fieldInfo, fv reflect.Value, raw []byte) error {
	for len(raw) > 0 {
		var val uint64
		var n int
		switch fi.kind {
		case kindFixed32:
			v32, nn := protowire.ConsumeFixed32(raw)
			val, n = uint64(v32), nn
		case kindFixed64:
			val, n = protowire.ConsumeFixed64(raw)
		default:
			v, nn := protowire.ConsumeVarint(raw)
			if fi.kind == kindZigzag {
				val = uint64(protowire.DecodeZigZag(v))
			} else {
				val = v
			}
			n = nn
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		elem := reflect.New(fv.Type().Elem()).Elem()
		setScalarValue(elem, val)
		fv.Set(reflect.Append(fv, elem))
		raw = raw[n:]
	}
	return nil
}
