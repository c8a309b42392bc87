// Package toolhouse is an HTTP client for Toolhouse agent endpoints.
//
// # Protocol
//
// Each agent is reachable at a fixed endpoint URL:
//
//	POST {endpoint}          {"message": "..."}  start a conversation
//	PUT  {endpoint}/{runID}  {"message": "..."}  continue it
//
// The start response carries the conversation id in the X-Toolhouse-Run-ID
// header. Both responses stream plain text; the client decodes it
// incrementally and hands the caller the cumulative text after every read,
// so a UI can simply replace what it shows with each value.
//
// # Errors
//
// Any non-2xx status or transport failure is returned as *RequestError.
// Nothing is retried.
//
// # Usage
//
//	c := toolhouse.NewClient(toolhouse.WithAPIKey(key))
//	res, err := c.StartConversation(ctx, agent.Endpoint, "hello", func(text string) {
//	    fmt.Print("\r", text)
//	})
package toolhouse
