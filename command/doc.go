// Package command encodes the operations of the Alpha Sign Communications
// Protocol into command codes and payloads ready for framing.
//
// Operations writing objects (TEXT, STRING, DOTS) carry the object's
// serialized content. Everything else is a write special function ('E'
// command code) whose payload starts with a one-byte function label: '$'
// memory configuration, '.' run sequence, ' ' time of day, ';' date, '&'
// day of week, '\'' time format, '(' speaker, ',' soft reset. Reading the
// time uses the read special function ('F') and expects a reply.
//
// The package also encodes the in-band directives embedded in TEXT content:
// color changes, display mode and position, speed, and calls to STRING and
// DOTS files or the current time. Directive bytes are appended in place so
// callers control their order relative to literal text.
package command
