package telephony

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSayHangup(t *testing.T) {
	doc := &Document{
		Say:    &Say{Voice: "Polly.Joanna", Text: "Goodbye."},
		Hangup: &Hangup{},
	}

	out := string(doc.Render())
	assert.True(t, strings.HasPrefix(out, xml.Header), "must start with the XML declaration")
	assert.Contains(t, out, `<Say voice="Polly.Joanna">Goodbye.</Say>`)
	assert.Contains(t, out, "<Hangup")

	// the Say verb must come before the Hangup
	assert.Less(t, strings.Index(out, "<Say"), strings.Index(out, "<Hangup"))
}

func TestRenderEscapesText(t *testing.T) {
	doc := &Document{Say: &Say{Text: `Tell me about "A & B" <teams>`}}
	out := string(doc.Render())
	assert.Contains(t, out, "A &amp; B")
	assert.Contains(t, out, "&lt;teams&gt;")
	assert.NotContains(t, out, "<teams>")
}

func TestWelcome(t *testing.T) {
	g := NewGenerator("")

	doc := g.Welcome("Dana", "iv-1")
	require.NotNil(t, doc.Say)
	assert.Contains(t, doc.Say.Text, "Dana")
	assert.Equal(t, defaultVoice, doc.Say.Voice)

	require.NotNil(t, doc.Redirect)
	assert.Equal(t, "POST", doc.Redirect.Method)
	assert.Equal(t, "/webhooks/call/question/iv-1", doc.Redirect.URL)
	assert.Nil(t, doc.Gather)
	assert.Nil(t, doc.Hangup)
}

func TestQuestion(t *testing.T) {
	g := NewGenerator("en-AU-Neural2-A")

	doc := g.Question("What is a goroutine?", "iv-1", 1, 3)
	require.NotNil(t, doc.Gather)
	assert.Equal(t, "speech", doc.Gather.Input)
	assert.Equal(t, "/webhooks/call/response/iv-1/1", doc.Gather.Action)
	assert.Equal(t, "POST", doc.Gather.Method)
	assert.Equal(t, "auto", doc.Gather.SpeechTimeout)
	assert.Equal(t, 10, doc.Gather.Timeout)

	require.NotNil(t, doc.Gather.Say)
	assert.Equal(t, "Question 2 of 3. What is a goroutine?", doc.Gather.Say.Text)
	assert.Equal(t, "en-AU-Neural2-A", doc.Gather.Say.Voice)
}

func TestCompletion(t *testing.T) {
	doc := NewGenerator("").Completion()
	require.NotNil(t, doc.Say)
	assert.Contains(t, doc.Say.Text, "Thank you")
	assert.NotNil(t, doc.Hangup)
	assert.Nil(t, doc.Redirect)
}

func TestErrorRedirectRoutesToNext(t *testing.T) {
	doc := NewGenerator("").ErrorRedirect("Sorry, something went wrong.", "iv-9")
	require.NotNil(t, doc.Redirect)
	assert.Equal(t, "/webhooks/call/next/iv-9", doc.Redirect.URL)
	require.NotNil(t, doc.Say)
	assert.Equal(t, "Sorry, something went wrong.", doc.Say.Text)
}

func TestErrorHangup(t *testing.T) {
	doc := NewGenerator("").ErrorHangup("Goodbye.")
	assert.NotNil(t, doc.Say)
	assert.NotNil(t, doc.Hangup)
	assert.Nil(t, doc.Redirect)
	assert.Nil(t, doc.Gather)
}

func TestNextQuestion(t *testing.T) {
	doc := NewGenerator("").NextQuestion("iv-2")
	require.NotNil(t, doc.Redirect)
	assert.Equal(t, "/webhooks/call/question/iv-2", doc.Redirect.URL)
	assert.Nil(t, doc.Say)
}

func TestRenderedDocumentsParse(t *testing.T) {
	g := NewGenerator("")
	docs := []*Document{
		g.Welcome("Sam", "iv-1"),
		g.Question("Why this role?", "iv-1", 0, 2),
		g.Completion(),
		g.ErrorRedirect("error", "iv-1"),
		g.ErrorHangup("error"),
		g.NextQuestion("iv-1"),
	}

	for _, d := range docs {
		var parsed Document
		require.NoError(t, xml.Unmarshal(d.Render(), &parsed))
	}
}
