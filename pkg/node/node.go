package node

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ErrUninitialized is returned when an operation needs the node's identity
// before any init message has assigned one.
var ErrUninitialized = errors.New("node has no identity (init not received)")

// Node is one protocol participant: identity, peer roster, the accumulated
// broadcast log, and the outgoing msg_id counter. A single goroutine must
// own a Node end to end; nothing here locks.
type Node struct {
	out io.Writer
	log *zap.Logger

	id        string
	peers     []string
	messages  []int
	nextMsgID int

	onInit func(id string, peers []string)
}

func New(out io.Writer, log *zap.Logger) *Node {
	if log == nil {
		log = zap.NewNop()
	}
	return &Node{out: out, log: log}
}

// OnInit registers a hook invoked after init assigns the node's identity.
// For side effects outside the protocol, e.g. registry advertisement.
func (n *Node) OnInit(fn func(id string, peers []string)) {
	n.onInit = fn
}

// Init assigns identity and peer roster. A node sees at most one init in
// practice; a repeat overwrites silently rather than failing.
func (n *Node) Init(nodeID string, nodeIDs []string) {
	if n.id != "" {
		n.log.Warn("repeated init, overwriting identity",
			zap.String("old", n.id), zap.String("new", nodeID))
	}
	n.id = nodeID
	n.peers = nodeIDs
	n.log.Info("initialized",
		zap.String("node_id", nodeID), zap.Strings("node_ids", nodeIDs))
	if n.onInit != nil {
		n.onInit(nodeID, nodeIDs)
	}
}

// GenerateID returns "<identity>-<nextMsgID>". It does not advance the
// counter; the reply carrying the id does, so calling this off the reply
// path can mint duplicates. Before init it returns ErrUninitialized: a
// generate at that point is a protocol-sequencing bug by the peer and must
// not be papered over with a default.
func (n *Node) GenerateID() (string, error) {
	if n.id == "" {
		return "", fmt.Errorf("generate id: %w", ErrUninitialized)
	}
	return fmt.Sprintf("%s-%d", n.id, n.nextMsgID), nil
}

// ID returns the identity assigned by init, or "" before init.
func (n *Node) ID() string { return n.id }

// Messages returns a copy of the broadcast log.
func (n *Node) Messages() []int {
	return append([]int(nil), n.messages...)
}
