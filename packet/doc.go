// Package packet implements the framing layer of the Alpha Sign
// Communications Protocol.
//
// Every command sent to a sign, and every reply received from one, travels
// in a frame:
//
//	[NUL x N][SOH][type][address][STX][command code][payload][ETX][checksum][EOT]
//
// The NUL preamble lets the sign lock onto the stream. The type code selects
// a class of signs ('Z' for all types) and the two ASCII hex address digits
// select a sign within it ("00" broadcasts). The checksum is the 16-bit sum
// of every byte from STX through ETX inclusive, sent as four ASCII hex digits.
//
// Frame builds the wire bytes; Unframe validates and splits a received frame.
// Unframe locates the trailer from the end of the buffer, so any payload byte
// sequence survives a Frame/Unframe round trip.
package packet
