// Package telephony renders the voice-call instruction documents the call
// provider executes. Rendering is pure: nothing here touches storage.
package telephony

import (
	"bytes"
	"encoding/xml"
)

// Say speaks text to the caller.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Gather collects one spoken answer and posts it to Action.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	Say           *Say
}

// Redirect hands the call off to another webhook step.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Document is one provider reply. Verb order follows field order: an
// optional leading Say, then exactly one of Gather, Redirect, or Hangup.
type Document struct {
	XMLName  xml.Name `xml:"Response"`
	Say      *Say
	Gather   *Gather
	Redirect *Redirect
	Hangup   *Hangup
}

// Render serializes the document with the XML declaration the provider
// expects. Marshal errors cannot occur for this fixed shape; Render returns
// a bare hangup on the impossible path rather than an invalid reply.
func (d *Document) Render() []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return []byte(xml.Header + "<Response><Hangup/></Response>")
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
