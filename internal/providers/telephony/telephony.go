package telephony

import "context"

// StartCallRequest describes one outbound screening call. AnswerURL is the
// webhook the provider fetches when the candidate picks up; StatusCallback
// receives call lifecycle updates.
type StartCallRequest struct {
	To             string
	AnswerURL      string
	StatusCallback string
}

// Provider places outbound calls. Webhook handling lives elsewhere; this is
// only the dial-out side.
type Provider interface {
	StartCall(ctx context.Context, req StartCallRequest) (callSID string, err error)
}
