package node

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/maelnode/internal/telemetry"
	"github.com/ryandielhenn/maelnode/pkg/protocol"
)

// Handle dispatches one inbound message and writes at most one reply.
// Inbound *_ok payloads are acks from other participants and are dropped.
func (n *Node) Handle(msg protocol.Message) error {
	start := time.Now()
	defer telemetry.ObserveHandle(msg.Body.Payload.Kind(), start)

	switch p := msg.Body.Payload.(type) {
	case protocol.Echo:
		return n.reply(msg, protocol.EchoOK{Echo: p.Echo})
	case protocol.Init:
		n.Init(p.NodeID, p.NodeIDs)
		return n.reply(msg, protocol.InitOK{})
	case protocol.Generate:
		id, err := n.GenerateID()
		if err != nil {
			return err
		}
		return n.reply(msg, protocol.GenerateOK{ID: id})
	case protocol.Topology:
		// Roster is acknowledged, not applied; no fan-out happens here.
		// Peers expect the empty-roster topology shape rather than
		// topology_ok, so that stays.
		return n.reply(msg, protocol.Topology{NodeIDs: []string{}})
	case protocol.Broadcast:
		n.messages = append(n.messages, p.Message)
		return n.reply(msg, protocol.BroadcastOK{})
	case protocol.Read:
		return n.reply(msg, protocol.ReadOK{Messages: n.Messages()})
	default:
		// init_ok, echo_ok, generate_ok, topology_ok, broadcast_ok, read_ok
		n.log.Debug("ignoring ack",
			zap.String("type", msg.Body.Payload.Kind()), zap.String("src", msg.Src))
		return nil
	}
}

// reply writes one newline-terminated JSON reply, src/dest swapped and
// correlated to the request, then advances nextMsgID. A failed write is
// fatal; there is no partial-write recovery.
func (n *Node) reply(req protocol.Message, payload protocol.Payload) error {
	msgID := n.nextMsgID
	out := protocol.Message{
		Src:  req.Dest,
		Dest: req.Src,
		Body: protocol.Body{
			MsgID:     &msgID,
			InReplyTo: req.Body.MsgID,
			Payload:   payload,
		},
	}

	buf, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode %s reply: %w", payload.Kind(), err)
	}
	// One Write call per reply keeps frames whole on the stream.
	if _, err := n.out.Write(append(buf, '\n')); err != nil {
		return fmt.Errorf("write %s reply: %w", payload.Kind(), err)
	}

	n.nextMsgID++
	telemetry.RepliesTotal.WithLabelValues(payload.Kind()).Inc()
	return nil
}
