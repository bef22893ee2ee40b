// Package halfduplex relays payloads over a half-duplex serial bus.
package halfduplex

// A request travels from the wireless side through a Mailbox into the Engine.
// The Engine owns the bus for one transaction at a time: it switches the
// direction line to transmit, writes the request, switches back to receive,
// reads the reply within a deadline and re-anchors the reply on the first
// two bytes of the request (the header) before handing it to the Publisher.
//
// The bus echoes, leaves partial frames from earlier exchanges or simply
// delivers noise in front of the reply, so no framing is assumed: the reply
// is whatever follows the first occurrence of the header.
//
// Producer: wireless transports (HandleWrite)
// Consumer: Engine.Run
