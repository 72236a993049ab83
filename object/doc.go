// Package object defines the files a caller places in a sign's memory:
// TEXT messages, STRING variables, and SMALL, LARGE and RGB DOTS pictures.
//
// Every file implements Object, the only view the sign session relies on:
// a label, a kind, the storage it needs, and its serialized payload. Objects
// are plain caller-owned values; a session re-reads them on every write, so
// updating a String and writing it again is how a live value such as a
// counter is kept current on the sign.
//
// TEXT content is an ordered list of spans. A span is either literal text
// or a directive (color, mode, position, speed, or a call to another file),
// and spans are rendered in the order given. Literal text and STRING data
// are limited to printable 7-bit ASCII.
package object
