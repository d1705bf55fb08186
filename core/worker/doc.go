// Package worker implements the batch dispatch loop of the command worker.
//
// A Batch is an ordered list of opaque records delivered together by the
// queue transport. For each record the Dispatcher decodes a command envelope,
// resolves the command in the registry, invokes the handler and measures how
// long the record spent in the worker and, when the envelope carries a
// gateway timestamp, how long it waited in the queue. Records are processed
// strictly one at a time, in delivery order.
//
// Failure isolation is the central contract: a decode error, an unknown
// command or a handler failure (including a panic) only marks that one record
// as failed. The Outcome names the failed record identifiers so the transport
// redelivers exactly those; everything else is implicitly acknowledged. The
// dispatcher keeps no state between batches, so redelivered batches are safe
// to process again as long as the handlers themselves are idempotent.
package worker
