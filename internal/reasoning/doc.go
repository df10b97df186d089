// Package reasoning talks to the external text-reasoning service that
// confirms which residual OCR fragments are genuine differences.
//
// # Request
//
// The service receives a single JSON POST:
//
//	{"content": "imgtext_1=[...]\nimgtext_2=[...]", "sessionId": "..."}
//
// where the two assignments carry the fragments found only in the first and
// only in the second image.
//
// # Response
//
// The reply is streamed text made of newline-separated frames. The first
// line that starts with "data:" and is not the "[DONE]" terminator carries a
// JSON envelope {"content": "..."}; the content is not JSON but a sequence of
// bare assignments in the same shape as the request:
//
//	imgtext_1 = ["Total: 50"]
//	imgtext_2 = ["Total: 55", "Paid"]
//
// Parse recovers those assignments with a small dedicated parser instead of
// rewriting the text into JSON.
//
// # Errors
//
// Transport failures and non-2xx replies are reported as *ServiceError and
// are fatal to the comparison. Payloads that cannot be parsed are reported as
// *PayloadParseError; callers treat them as "no confirmed differences".
package reasoning
