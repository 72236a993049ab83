// Package transport carries framed packets between the host and a sign.
//
// A Transport is a plain byte stream: Send writes one complete frame and
// Receive returns whatever bytes arrive within a timeout. Frame boundaries
// are the caller's concern; a reply may be split across several Receive
// calls.
//
// Three implementations are provided:
//
//   - TCP, for serial-to-network bridges.
//   - Serial, for a local serial port or USB-serial adapter.
//   - Debug, which records every frame and plays back scripted replies.
//
// Every transport can tee its traffic into a CBOR capture stream with
// WithCapture; ReadCapture decodes such a stream.
package transport
