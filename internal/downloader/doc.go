// Package downloader implements the quote download orchestrator.
//
// The orchestrator:
//   - Keeps at most Concurrency transfers in flight
//   - Streams every transfer's body chunks, in arrival order, into that
//     security's parser.RecordParser
//   - Drives all transfers from one control loop that waits at most
//     PollInterval between events
//   - Retires a transfer as soon as it completes and admits the next
//     queued security in its place
//
// A failed transfer yields a failed parser.Outcome and never aborts the batch.
package downloader
