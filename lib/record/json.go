// Copyright 2026 The RKL Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MarshalJSON encodes r as a JSON object with fields in record order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	if err := r.appendJSON(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (r *Record) appendJSON(buffer *bytes.Buffer) error {
	if r == nil {
		buffer.WriteString("null")
		return nil
	}
	buffer.WriteByte('{')
	for index, key := range r.keys {
		if index > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		if err := r.values[key].appendJSON(buffer); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	buffer.WriteByte('}')
	return nil
}

// MarshalJSON encodes v as JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	if err := v.appendJSON(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (v Value) appendJSON(buffer *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buffer.WriteString("null")
	case KindString:
		encoded, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buffer.Write(encoded)
	case KindBool:
		buffer.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		if v.integer {
			buffer.WriteString(strconv.FormatInt(v.i, 10))
			return nil
		}
		encoded, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		buffer.Write(encoded)
	case KindList:
		buffer.WriteByte('[')
		for index, item := range v.list {
			if index > 0 {
				buffer.WriteByte(',')
			}
			if err := item.appendJSON(buffer); err != nil {
				return err
			}
		}
		buffer.WriteByte(']')
	case KindMap:
		return v.fields.appendJSON(buffer)
	default:
		return fmt.Errorf("invalid value kind %d", uint8(v.kind))
	}
	return nil
}

// UnmarshalJSON decodes a JSON object into r, replacing its contents
// and preserving the document's field order. Integers decode as
// integer numbers.
func (r *Record) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	v, err := decodeValue(decoder)
	if err != nil {
		return err
	}
	if v.kind != KindMap {
		return fmt.Errorf("record: expected JSON object, got %s", v.kind)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("record: trailing data after JSON object")
	}
	*r = *v.fields
	return nil
}

// UnmarshalJSON decodes any JSON value into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	decoded, err := decodeValue(decoder)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// Parse decodes one JSON object into a new record.
func Parse(data []byte) (*Record, error) {
	r := New()
	if err := r.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}

// decodeValue reads one complete JSON value from the token stream.
func decodeValue(decoder *json.Decoder) (Value, error) {
	token, err := decoder.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch typed := token.(type) {
	case json.Delim:
		switch typed {
		case '{':
			nested := New()
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return Value{}, fmt.Errorf("record: object key is %T", keyToken)
				}
				element, err := decodeValue(decoder)
				if err != nil {
					return Value{}, fmt.Errorf("field %q: %w", key, err)
				}
				nested.SetValue(key, element)
			}
			if _, err := decoder.Token(); err != nil {
				return Value{}, err
			}
			return Map(nested), nil
		case '[':
			items := []Value{}
			for decoder.More() {
				item, err := decodeValue(decoder)
				if err != nil {
					return Value{}, fmt.Errorf("list item %d: %w", len(items), err)
				}
				items = append(items, item)
			}
			if _, err := decoder.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindList, list: items}, nil
		default:
			return Value{}, fmt.Errorf("record: unexpected delimiter %q", rune(typed))
		}
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case json.Number:
		return parseNumber(string(typed))
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("record: unexpected JSON token %T", token)
	}
}
