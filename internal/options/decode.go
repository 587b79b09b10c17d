package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is the encoding of a configuration buffer.
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	}
	return "unknown"
}

// DecodeError reports a configuration buffer that could not be turned into
// ParseOptions.
type DecodeError struct {
	Format Format
	Cause  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid parse configuration (%s): %s: %v", e.Format, e.Cause, e.Err)
	}
	return fmt.Sprintf("invalid parse configuration (%s): %s", e.Format, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Detect guesses the buffer format: a msgpack map marker selects msgpack,
// everything else is treated as JSON.
func Detect(raw []byte) Format {
	if len(raw) == 0 {
		return FormatJSON
	}
	switch b := raw[0]; {
	case b >= 0x80 && b <= 0x8f, b == 0xde, b == 0xdf:
		return FormatMsgpack
	}
	return FormatJSON
}

// Decode turns a configuration buffer into validated ParseOptions. Omitted
// fields keep the values of Default. The buffer is not retained.
func Decode(raw []byte) (ParseOptions, error) {
	format := Detect(raw)
	if len(bytes.TrimSpace(raw)) == 0 {
		return ParseOptions{}, &DecodeError{Format: format, Cause: "empty configuration"}
	}

	opts := Default()
	var err error
	switch format {
	case FormatMsgpack:
		err = decodeMsgpack(raw, &opts)
	default:
		err = decodeJSON(raw, &opts)
	}
	if err != nil {
		return ParseOptions{}, &DecodeError{Format: format, Cause: "malformed buffer", Err: err}
	}
	if err := opts.Validate(); err != nil {
		return ParseOptions{}, &DecodeError{Format: format, Cause: err.Error()}
	}
	return opts, nil
}

func decodeJSON(raw []byte, opts *ParseOptions) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(opts); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after configuration object")
	}
	return nil
}

func decodeMsgpack(raw []byte, opts *ParseOptions) error {
	r := bytes.NewReader(raw)
	dec := msgpack.NewDecoder(r)
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(opts); err != nil {
		return err
	}
	if r.Len() > 0 {
		return errors.New("trailing data after configuration map")
	}
	return nil
}

// Encode renders options as a configuration buffer in the given format.
func Encode(opts ParseOptions, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.Marshal(opts)
	case FormatMsgpack:
		return msgpack.Marshal(opts)
	}
	return nil, fmt.Errorf("unknown configuration format %d", format)
}

// CacheKey returns a canonical byte form of the options, stable across
// buffer formats and field order.
func (o ParseOptions) CacheKey() []byte {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(o); err != nil {
		panic(fmt.Errorf("options cache key: %w", err))
	}
	return buf.Bytes()
}
