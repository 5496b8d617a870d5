// Package scanner is a generic, state-function-driven lexical scanner engine.
//
// A grammar is a set of StateFn values that reference each other. Each
// StateFn receives the Scanner capability, reads characters with Next (and
// Peek), un-reads them with Back, emits tokens with Emit and returns the next
// StateFn. Returning nil stops the scan; returning an error stops it with
// that error as the terminal outcome.
//
//	eng, err := scanner.New(src, grammar, scanner.Options{})
//	stream := scanner.Spawn(ctx, eng)
//	for tok := range stream.Tokens() {
//		...
//	}
//	if err := stream.Wait(); err != nil {
//		...
//	}
//
// # Cursor rules
//
// Back un-reads one character at a time and only characters read since the
// last Emit; backing over '\n' is refused because line bookkeeping is kept
// incremental. Use Peek to look at a character that may be a line break.
//
// # Delivery
//
// Spawn runs the engine on its own goroutine and delivers tokens through a
// FIFO channel. Tokens emitted before a failure are always delivered; the
// failure itself is reported by Wait. Closing the stream (or cancelling the
// context) makes the next Next, Peek or Emit fail with ErrChannelClosed,
// which the engine treats as a normal stop. A transition that reads a long
// run without emitting is therefore stopped mid-run.
package scanner
