package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	ws "github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a candidate's exam over WebSocket.
type WSHandler struct {
	runtime  *service.ExamRuntime
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(runtime *service.ExamRuntime, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		runtime:  runtime,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// wsConn serialises writes: runtime events and action replies share one socket.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteTyped(w.conn, v)
}

func (w *wsConn) fail(err error) error {
	_, code := errorStatus(err)
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteError(w.conn, string(code), response.GetMessage(code))
}

// ExamStream godoc
// WS /ws/v1/candidate/exam/stream?token=...
// Starts or rejoins the exam, then pushes timer, state and submission events
// while accepting answer/navigation actions.
func (h *WSHandler) ExamStream(c *gin.Context) {
	sessionID, ok := candidateSession(c)
	if !ok {
		return
	}

	// Errors before the upgrade are returned as plain HTTP responses.
	state, err := h.runtime.Start(c.Request.Context(), sessionID)
	if err != nil {
		failService(c, err)
		return
	}
	events, unsubscribe, err := h.runtime.Subscribe(sessionID)
	if err != nil {
		failService(c, err)
		return
	}
	defer unsubscribe()

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Candidate connected")

	if err := conn.send(ws.StateResponse{Event: ws.EventState, State: state}); err != nil {
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.forward(conn, events)
	}()

	for {
		msg, err := ws.ReadMessage(raw)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		if err := h.dispatch(c, conn, sessionID, msg); err != nil {
			wsLog.Debug().Err(err).Msg("Write failed")
			break
		}
	}

	unsubscribe()
	wg.Wait()
}

// forward relays runtime events until the subscription closes.
func (h *WSHandler) forward(conn *wsConn, events <-chan service.RuntimeEvent) {
	for ev := range events {
		var err error
		switch ev.Type {
		case service.EventTimer:
			err = conn.send(ws.TimerResponse{Event: ws.EventTimer, Timer: *ev.Timer})
		case service.EventState:
			err = conn.send(ws.SnapshotResponse{Event: ws.EventState, Snapshot: ev.Snapshot})
		case service.EventSubmitted:
			_ = conn.send(ws.SubmittedResponse{Event: ws.EventSubmitted, Receipt: model.NewSubmissionReceipt(*ev.Submission)})
			conn.mu.Lock()
			ws.CloseNormal(conn.conn, "exam finished")
			conn.mu.Unlock()
			return
		}
		if err != nil {
			return
		}
	}
}

// dispatch handles one client action. Only write failures are returned;
// rejected actions are reported to the client as error events.
func (h *WSHandler) dispatch(c *gin.Context, conn *wsConn, sessionID uuid.UUID, msg []byte) error {
	ctx := c.Request.Context()

	var env ws.RequestEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return conn.send(ws.ErrorResponse{Event: ws.EventError, Code: string(response.ErrInvalidPayload), Error: response.GetMessage(response.ErrInvalidPayload)})
	}

	switch env.Action {
	case ws.ActionPing:
		return conn.send(ws.PongResponse{Event: ws.EventPong})

	case ws.ActionState:
		state, err := h.runtime.State(ctx, sessionID)
		if err != nil {
			return conn.fail(err)
		}
		return conn.send(ws.StateResponse{Event: ws.EventState, State: state})

	case ws.ActionAnswer:
		var req ws.AnswerRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return conn.fail(service.ErrActionNotAllowed)
		}
		snap, err := h.runtime.Answer(ctx, sessionID, req.Index, req.Value)
		if err != nil {
			return conn.fail(err)
		}
		return conn.send(ws.SnapshotResponse{Event: ws.EventState, Snapshot: snap})

	case ws.ActionGoTo, ws.ActionNext, ws.ActionPrevious:
		var req ws.GoToRequest
		_ = json.Unmarshal(msg, &req)
		snap, err := h.runtime.Navigate(ctx, sessionID, service.NavigateAction(env.Action), req.Index)
		if err != nil {
			return conn.fail(err)
		}
		return conn.send(ws.SnapshotResponse{Event: ws.EventState, Snapshot: snap})

	case ws.ActionSubmit:
		// The submitted event itself arrives through the subscription.
		sub, err := h.runtime.Submit(ctx, sessionID)
		if err != nil && sub == nil {
			return conn.fail(err)
		}
		return nil

	case ws.ActionViolation:
		var req ws.ViolationRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return conn.fail(service.ErrActionNotAllowed)
		}
		if !validViolation(req.ViolationType, req.Severity) {
			return conn.send(ws.ErrorResponse{Event: ws.EventError, Code: string(response.ErrValidation), Error: "unknown violation type or severity"})
		}
		err := h.runtime.ReportViolation(ctx, sessionID, model.ReportViolationRequest{
			ViolationType: req.ViolationType,
			Severity:      req.Severity,
			Details:       truncate(req.Details, 1000),
		})
		if err != nil {
			return conn.fail(err)
		}
		return conn.send(ws.SuccessResponse{Event: ws.EventSuccess, Action: ws.ActionViolation})

	default:
		h.log.Warn().Str("action", string(env.Action)).Msg("Unknown action")
		return conn.send(ws.ErrorResponse{Event: ws.EventError, Code: string(response.ErrInvalidPayload), Error: "unknown action: " + string(env.Action)})
	}
}

func validViolation(violationType, severity string) bool {
	switch model.Severity(severity) {
	case "", model.SeverityLow, model.SeverityMedium, model.SeverityHigh:
	default:
		return false
	}
	return model.KnownViolation(model.ViolationType(violationType))
}

// truncate caps s at n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
