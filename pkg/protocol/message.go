// Package protocol defines the wire format spoken on stdin/stdout: one JSON
// message per line, each an envelope of {src, dest, body} where the body is a
// single flat object carrying the type tag, correlation ids, and the
// payload's own fields side by side.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message is the envelope around every request and reply. A reply is always
// a new Message; inbound messages are never mutated.
type Message struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body Body   `json:"body"`
}

// Body carries the payload plus the correlation fields. MsgID and InReplyTo
// are pointers because absent is not the same as zero: a reply to a message
// that carried no msg_id carries no in_reply_to.
type Body struct {
	MsgID     *int
	InReplyTo *int
	Payload   Payload
}

// Payload is the closed set of message kinds. Unknown type tags fail to
// decode; there is no catch-all variant.
type Payload interface {
	Kind() string
}

type Init struct {
	NodeID  string
	NodeIDs []string
}

type InitOK struct{}

type Echo struct {
	Echo string
}

type EchoOK struct {
	Echo string
}

type Generate struct{}

type GenerateOK struct {
	ID string
}

type Topology struct {
	NodeIDs []string
}

type TopologyOK struct{}

type Broadcast struct {
	Message int
}

type BroadcastOK struct{}

type Read struct{}

type ReadOK struct {
	Messages []int
}

func (Init) Kind() string        { return "init" }
func (InitOK) Kind() string      { return "init_ok" }
func (Echo) Kind() string        { return "echo" }
func (EchoOK) Kind() string      { return "echo_ok" }
func (Generate) Kind() string    { return "generate" }
func (GenerateOK) Kind() string  { return "generate_ok" }
func (Topology) Kind() string    { return "topology" }
func (TopologyOK) Kind() string  { return "topology_ok" }
func (Broadcast) Kind() string   { return "broadcast" }
func (BroadcastOK) Kind() string { return "broadcast_ok" }
func (Read) Kind() string        { return "read" }
func (ReadOK) Kind() string      { return "read_ok" }

// wireBody is the superset of every body field. Pointer fields distinguish
// absent from zero on both decode and encode; omitempty keeps absent fields
// off the wire entirely (never null).
type wireBody struct {
	Type      string    `json:"type"`
	MsgID     *int      `json:"msg_id,omitempty"`
	InReplyTo *int      `json:"in_reply_to,omitempty"`
	NodeID    *string   `json:"node_id,omitempty"`
	NodeIDs   *[]string `json:"node_ids,omitempty"`
	Echo      *string   `json:"echo,omitempty"`
	ID        *string   `json:"id,omitempty"`
	Message   *int      `json:"message,omitempty"`
	Messages  *[]int    `json:"messages,omitempty"`
}

func (b Body) MarshalJSON() ([]byte, error) {
	w := wireBody{MsgID: b.MsgID, InReplyTo: b.InReplyTo}

	switch p := b.Payload.(type) {
	case Init:
		w.NodeID = &p.NodeID
		ids := nonNilStrings(p.NodeIDs)
		w.NodeIDs = &ids
	case InitOK:
	case Echo:
		w.Echo = &p.Echo
	case EchoOK:
		w.Echo = &p.Echo
	case Generate:
	case GenerateOK:
		w.ID = &p.ID
	case Topology:
		ids := nonNilStrings(p.NodeIDs)
		w.NodeIDs = &ids
	case TopologyOK:
	case Broadcast:
		w.Message = &p.Message
	case BroadcastOK:
	case Read:
	case ReadOK:
		ms := p.Messages
		if ms == nil {
			ms = []int{}
		}
		w.Messages = &ms
	case nil:
		return nil, errors.New("body has no payload")
	default:
		return nil, fmt.Errorf("unencodable payload %T", b.Payload)
	}

	w.Type = b.Payload.Kind()
	return json.Marshal(w)
}

func (b *Body) UnmarshalJSON(data []byte) error {
	var w wireBody
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.MsgID = w.MsgID
	b.InReplyTo = w.InReplyTo

	switch w.Type {
	case "init":
		if w.NodeID == nil {
			return errMissing("init", "node_id")
		}
		if w.NodeIDs == nil {
			return errMissing("init", "node_ids")
		}
		b.Payload = Init{NodeID: *w.NodeID, NodeIDs: *w.NodeIDs}
	case "init_ok":
		b.Payload = InitOK{}
	case "echo":
		if w.Echo == nil {
			return errMissing("echo", "echo")
		}
		b.Payload = Echo{Echo: *w.Echo}
	case "echo_ok":
		if w.Echo == nil {
			return errMissing("echo_ok", "echo")
		}
		b.Payload = EchoOK{Echo: *w.Echo}
	case "generate":
		b.Payload = Generate{}
	case "generate_ok":
		if w.ID == nil {
			return errMissing("generate_ok", "id")
		}
		b.Payload = GenerateOK{ID: *w.ID}
	case "topology":
		if w.NodeIDs == nil {
			return errMissing("topology", "node_ids")
		}
		b.Payload = Topology{NodeIDs: *w.NodeIDs}
	case "topology_ok":
		b.Payload = TopologyOK{}
	case "broadcast":
		if w.Message == nil {
			return errMissing("broadcast", "message")
		}
		b.Payload = Broadcast{Message: *w.Message}
	case "broadcast_ok":
		b.Payload = BroadcastOK{}
	case "read":
		b.Payload = Read{}
	case "read_ok":
		if w.Messages == nil {
			return errMissing("read_ok", "messages")
		}
		b.Payload = ReadOK{Messages: *w.Messages}
	case "":
		return errors.New("body missing type")
	default:
		return fmt.Errorf("unknown message type %q", w.Type)
	}
	return nil
}

func errMissing(kind, field string) error {
	return fmt.Errorf("%s: missing field %q", kind, field)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
