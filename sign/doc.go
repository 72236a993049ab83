// Package sign drives one LED sign, or a group of signs sharing an address,
// through a Transport.
//
// A Sign owns the local mirror of the sign's memory configuration and
// serializes every command onto the link: a frame is encoded, framed and
// sent, and for queries the reply is read, while holding a single slot, so
// concurrent callers never interleave bytes on the wire.
//
// A session moves through three states:
//
//	Disconnected --Connect--> Connected --Allocate--> Allocated
//	     ^                        ^                       |
//	     |                        +------ClearMemory------+
//	     +-----------------Disconnect (any state)
//
// A send or receive that fails with transport.ErrDisconnected or
// transport.ErrIOFailure closes the transport and moves the session to
// Disconnected, as Disconnect does; Connect opens the link again. Disconnect
// waits for a frame being sent but interrupts a wait for a reply.
//
// Objects are written by value: Write re-reads the object on every call, so
// updating a String and writing it again keeps a live value on the sign.
//
//	s, _ := sign.New(tr)
//	_ = s.Connect(ctx)
//	_ = s.Allocate(ctx, text, counter)
//	_ = s.SetRunSequence(ctx, text)
//	_ = s.Write(ctx, text)
//	for i := 0; ; i++ {
//		_ = counter.SetData(strconv.Itoa(i))
//		_ = s.Write(ctx, counter)
//	}
package sign
