package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler runs one quiz per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	delay    time.Duration
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler builds the handler; delay is the feedback pause before the next question.
func NewWSHandler(service *app.QuizService, delay time.Duration, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		delay:   delay,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and plays the quiz for ?category= with the caller's identity.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		http.Error(w, "missing category", http.StatusBadRequest)
		return
	}
	caller := auth.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx, caller, category)
	if errors.Is(err, domain.ErrNoWords) {
		_ = conn.WriteJSON(outboundMessage{Type: "empty", Payload: emptyView{Empty: true, Category: category}})
		return
	}
	if err != nil {
		h.log.Error("start quiz failed", zap.String("category", category), zap.Error(err))
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: messageFor(err, statusFor(err))}})
		return
	}
	defer func() { _ = h.service.Abandon(caller, session.ID()) }()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var timers sync.WaitGroup

	// single writer; gorilla connections do not allow concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	push := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-closeSignals:
		case <-writerDone:
		}
	}

	push(outboundMessage{Type: "started", Payload: newStartedView(session, caller)})
	if q, idx, ok := session.Current(); ok {
		push(outboundMessage{Type: "question", Payload: newQuestionView(q, idx, session.Snapshot().Total)})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if inbound.Type != "answer" {
			push(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
			continue
		}
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
			continue
		}

		outcome, err := h.service.Submit(ctx, caller, session.ID(), payload.Option)
		if errors.Is(err, domain.ErrVerificationFailed) {
			push(outboundMessage{Type: "notice", Payload: errorPayload{Message: domain.ErrVerificationFailed.Error()}})
			continue
		}
		if err != nil {
			break
		}
		if !outcome.Accepted {
			continue
		}

		// the result goes out as its own message
		view := newAnswerView(outcome)
		view.Result = nil
		push(outboundMessage{Type: "answerResult", Payload: view})

		if outcome.Result != nil {
			push(outboundMessage{Type: "result", Payload: outcome.Result})
			if outcome.Result.ReportError != "" {
				push(outboundMessage{Type: "notice", Payload: errorPayload{Message: outcome.Result.ReportError}})
			}
			continue
		}

		timers.Add(1)
		go func() {
			defer timers.Done()
			select {
			case <-time.After(h.delay):
			case <-closeSignals:
				return
			}
			q, ok, err := h.service.Acknowledge(caller, session.ID())
			if err != nil || !ok {
				return
			}
			st := session.Snapshot()
			push(outboundMessage{Type: "question", Payload: newQuestionView(q, st.Index, st.Total)})
		}()
	}

	close(closeSignals)
	timers.Wait()
	close(send)
	<-writerDone
}
