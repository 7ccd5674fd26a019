/*
Package socklinelib implements a request/reply client for a single TCP
endpoint with line, fixed-block and delimiter framing, transparent
reconnection and per-call timeouts.

A background receive loop turns the byte stream into a buffer that framed
reads consume from; when the loop dies (EOF or I/O error) the client tears
the connection down and, with auto-reconnect on, transparently reopens on
the next call. The protocol itself is opaque to this package: it only
understands byte framing.

	c := socklinelib.NewClient("10.0.0.7", 5025)
	reply, err := c.WriteReadLine(ctx, []byte("*IDN?\n"))
*/
package socklinelib
