package mqtt

// Topics of one gateway, relative to the queue's TopicPrefix.
//
//	<id>/rx      payloads written to the gateway
//	<id>/tx      the published value (retained)
//	<id>/status  outcome of each transaction
//	<id>/meta    gateway info (retained while online)
type Topics struct {
	ID string
}

// RX is the topic carrying inbound payloads.
func (t Topics) RX() string { return t.ID + "/rx" }

// TX is the topic carrying the published value.
func (t Topics) TX() string { return t.ID + "/tx" }

// Status is the topic carrying transaction outcomes.
func (t Topics) Status() string { return t.ID + "/status" }

// Meta is the topic carrying gateway info.
func (t Topics) Meta() string { return t.ID + "/meta" }

// MetaPattern matches the meta topic of every gateway.
const MetaPattern = "+/meta"

// Meta describes a gateway.
type Meta struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Device string `json:"device,omitempty"`
}
