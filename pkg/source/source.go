// Package source feeds real-time chat events into the state engine. The
// websocket source is the normal path for interactive clients; the kafka
// source tails the broker directly for bots and ops tooling that live
// behind the gateway.
package source

import "github.com/mahaj/chat-client/pkg/model"

// Sink consumes inbound frames. *chatstate.Manager satisfies it.
type Sink interface {
	AppendIncoming(msg model.Message)
}

// deliverable reports whether a frame concerns the signed-in user. Broker
// tails see every conversation; gateway connections are already scoped but
// the check is harmless there.
func deliverable(self string, msg model.Message) bool {
	switch msg.Kind() {
	case model.TypeTyping, model.TypeStopTyping:
		return msg.Receiver == "" || msg.Receiver == self
	case model.TypePresence:
		return true
	default:
		return msg.Sender == self || msg.Receiver == self
	}
}
