package telephony

import "fmt"

const defaultVoice = "Polly.Joanna"

// Generator maps orchestration steps to instruction documents. It is
// deterministic and side-effect free; the orchestrator owns all persistence.
type Generator struct {
	voice string
}

func NewGenerator(voice string) *Generator {
	if voice == "" {
		voice = defaultVoice
	}
	return &Generator{voice: voice}
}

func (g *Generator) say(text string) *Say {
	return &Say{Voice: g.voice, Text: text}
}

func questionPath(interviewID string) string {
	return fmt.Sprintf("/webhooks/call/question/%s", interviewID)
}

func responsePath(interviewID string, index int) string {
	return fmt.Sprintf("/webhooks/call/response/%s/%d", interviewID, index)
}

func nextPath(interviewID string) string {
	return fmt.Sprintf("/webhooks/call/next/%s", interviewID)
}

// Welcome greets the candidate and redirects into question delivery.
func (g *Generator) Welcome(candidateName, interviewID string) *Document {
	text := fmt.Sprintf(
		"Hello %s, welcome to your automated screening interview. "+
			"You will be asked a series of questions. After each question, "+
			"please speak your answer clearly. Let's begin.", candidateName)
	return &Document{
		Say:      g.say(text),
		Redirect: &Redirect{Method: "POST", URL: questionPath(interviewID)},
	}
}

// Question speaks questions[index] and gathers one spoken answer. The
// capture callback carries the index so the reply is self-describing even
// if the context is briefly unavailable.
func (g *Generator) Question(text, interviewID string, index, total int) *Document {
	prompt := fmt.Sprintf("Question %d of %d. %s", index+1, total, text)
	return &Document{
		Gather: &Gather{
			Input:         "speech",
			Action:        responsePath(interviewID, index),
			Method:        "POST",
			SpeechTimeout: "auto",
			Timeout:       10,
			Say:           g.say(prompt),
		},
	}
}

// Completion thanks the candidate and ends the call.
func (g *Generator) Completion() *Document {
	return &Document{
		Say: g.say("That was the last question. Thank you for completing the interview. " +
			"Our team will review your responses and get back to you. Goodbye."),
		Hangup: &Hangup{},
	}
}

// ErrorRedirect narrates a recoverable failure and routes the call to a
// safe next step so the session never stalls.
func (g *Generator) ErrorRedirect(message, interviewID string) *Document {
	return &Document{
		Say:      g.say(message),
		Redirect: &Redirect{Method: "POST", URL: nextPath(interviewID)},
	}
}

// ErrorHangup narrates an unrecoverable failure and ends the call cleanly.
func (g *Generator) ErrorHangup(message string) *Document {
	return &Document{
		Say:    g.say(message),
		Hangup: &Hangup{},
	}
}

// NextQuestion redirects into question delivery after a manual advance.
func (g *Generator) NextQuestion(interviewID string) *Document {
	return &Document{
		Redirect: &Redirect{Method: "POST", URL: questionPath(interviewID)},
	}
}
