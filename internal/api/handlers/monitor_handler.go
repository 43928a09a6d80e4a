package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/redis/go-redis/v9"
)

// MonitorHandler streams scoring events for one interview to a recruiter's
// browser. The socket is one-way: workers publish JSON to the interview's
// event channel and the handler forwards each payload verbatim.
type MonitorHandler struct {
	interviews services.InterviewService
	redis      *redis.Client
	upgrader   websocket.Upgrader
}

func NewMonitorHandler(interviews services.InterviewService, rdb *redis.Client) *MonitorHandler {
	return &MonitorHandler{
		interviews: interviews,
		redis:      rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type monitorConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *monitorConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *MonitorHandler) InterviewWS(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	interviewID := c.Param("interview_id")
	if interviewID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "MonitorHandler.InterviewWS", "missing interview_id", nil))
		return
	}

	// the interview must exist before a socket is held open for it
	if _, err := h.interviews.Get(c.Request.Context(), interviewID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &monitorConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, scoring.EventChannel(interviewID))
	defer pubsub.Close()

	// reader: drain client frames so pings and close frames are processed
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, rerr := conn.ReadMessage(); rerr != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
