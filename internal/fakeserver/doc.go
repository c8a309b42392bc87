// Package fakeserver is a local stand-in for Toolhouse agent endpoints.
//
// It speaks the same protocol as the real service, echoing each message back
// as a streamed reply, so the hub can be exercised without network access:
//
//	POST /agents/{agentID}          start a run, X-Toolhouse-Run-ID in reply
//	PUT  /agents/{agentID}/{runID}  continue a run (404 if unknown)
//
// Point a catalog entry's endpoint at http://localhost:8787/agents/<id>.
package fakeserver
