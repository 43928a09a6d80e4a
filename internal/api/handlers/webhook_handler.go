package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/sirupsen/logrus"
)

// WebhookHandler terminates the telephony provider's callbacks. The step
// endpoints never surface an HTTP error to the provider: whatever happens,
// the handler responds 200 with a playable instruction document and leaves
// the failure to the logs.
type WebhookHandler struct {
	calls services.CallService
	log   *logrus.Logger
}

func NewWebhookHandler(calls services.CallService, log *logrus.Logger) *WebhookHandler {
	if log == nil {
		log = logrus.New()
	}
	return &WebhookHandler{calls: calls, log: log}
}

func (h *WebhookHandler) respond(c *gin.Context, interviewID, step string, doc interface{ Render() []byte }, err error) {
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"interview_id": interviewID,
			"step":         step,
		}).Error("webhook step failed")
	}
	c.Data(http.StatusOK, "application/xml", doc.Render())
}

// CallStart handles POST /webhooks/call/start/:interview_id.
func (h *WebhookHandler) CallStart(c *gin.Context) {
	interviewID := c.Param("interview_id")
	doc, err := h.calls.HandleCallStart(c.Request.Context(), interviewID)
	h.respond(c, interviewID, "start", doc, err)
}

// Question handles POST /webhooks/call/question/:interview_id.
func (h *WebhookHandler) Question(c *gin.Context) {
	interviewID := c.Param("interview_id")
	doc, err := h.calls.HandleQuestion(c.Request.Context(), interviewID)
	h.respond(c, interviewID, "question", doc, err)
}

// Response handles POST /webhooks/call/response/:interview_id/:question_index.
// The capture fields arrive form-encoded from the provider.
func (h *WebhookHandler) Response(c *gin.Context) {
	interviewID := c.Param("interview_id")

	index, err := strconv.Atoi(c.Param("question_index"))
	if err != nil {
		index = -1 // out of range, handled as an unanswerable capture
	}

	confidence, _ := strconv.ParseFloat(c.PostForm("Confidence"), 64)
	duration, _ := strconv.Atoi(c.PostForm("RecordingDuration"))

	doc, serr := h.calls.HandleResponse(c.Request.Context(), interviewID, index, services.CapturedResponse{
		Transcript:   c.PostForm("SpeechResult"),
		Confidence:   confidence,
		RecordingURL: c.PostForm("RecordingUrl"),
		Duration:     duration,
	})
	h.respond(c, interviewID, "response", doc, serr)
}

// Next handles POST /webhooks/call/next/:interview_id.
func (h *WebhookHandler) Next(c *gin.Context) {
	interviewID := c.Param("interview_id")
	doc, err := h.calls.HandleNext(c.Request.Context(), interviewID)
	h.respond(c, interviewID, "next", doc, err)
}

// CallStatus handles POST /webhooks/call/status. The provider only needs an
// acknowledgement, so the reply is a fixed JSON body regardless of outcome.
func (h *WebhookHandler) CallStatus(c *gin.Context) {
	callSID := c.PostForm("CallSid")
	callStatus := c.PostForm("CallStatus")
	duration, _ := strconv.Atoi(c.PostForm("CallDuration"))

	if err := h.calls.HandleCallStatus(c.Request.Context(), callSID, callStatus, duration); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"call_sid":    callSID,
			"call_status": callStatus,
		}).Warn("call status update failed")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
