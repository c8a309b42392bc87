// Package chat drives one conversation between the user and one agent.
//
// # Overview
//
// A Session owns the in-memory transcript, the run id of the remote
// conversation and a loading flag. Send appends the user's message and an
// empty assistant placeholder, streams the reply into that placeholder, and
// on success saves the whole transcript to history.
//
// # States
//
//	Idle --Send--> Sending --reply or error--> Idle
//
// Only one send may be in flight; a Send while loading is dropped with
// ErrBusy. Failures are rendered as the assistant turn
// ("⚠️ Error: ... Please try again.") and are not saved.
//
// # Cancellation
//
// Clear, LoadFromHistory, Resume and Close cancel the in-flight request.
// Chunks that arrive for an abandoned request are ignored.
//
// # Observing
//
// Subscribe returns a channel of Snapshots published on every change. A slow
// subscriber may miss intermediate snapshots but always gets the latest one.
package chat
