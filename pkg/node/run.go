package node

import (
	"errors"
	"fmt"
	"io"

	"github.com/ryandielhenn/maelnode/internal/telemetry"
	"github.com/ryandielhenn/maelnode/pkg/protocol"
)

// Run consumes messages from r until it is exhausted. One message is
// processed fully before the next is read, so replies leave in request
// order. The first decode or handler error ends the run; recovery is a
// fresh process under an external supervisor, not in-loop healing.
func (n *Node) Run(r io.Reader) error {
	dec := protocol.NewDecoder(r)
	for {
		msg, err := dec.Next()
		if errors.Is(err, io.EOF) {
			n.log.Info("input stream closed, shutting down")
			return nil
		}
		if err != nil {
			telemetry.DecodeErrors.Inc()
			return fmt.Errorf("decode input: %w", err)
		}
		if err := n.Handle(msg); err != nil {
			return fmt.Errorf("handle %s from %s: %w", msg.Body.Payload.Kind(), msg.Src, err)
		}
	}
}
