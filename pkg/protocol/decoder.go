package protocol

import (
	"encoding/json"
	"io"
)

// Decoder pulls Messages off a byte stream of JSON values separated by
// arbitrary whitespace (one per line in practice). It makes no attempt to
// resynchronize after malformed input; the first bad value is the last.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next decoded Message, io.EOF once the stream is
// exhausted, or a decode error for malformed input.
func (d *Decoder) Next() (Message, error) {
	var msg Message
	if err := d.dec.Decode(&msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
