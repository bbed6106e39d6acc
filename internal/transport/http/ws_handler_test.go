package http

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketGuestPlaysToResult(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env, "/ws?category=Colors")

	readNext(conn, t, "started")
	result := playToEnd(t, conn)
	if result["score"].(float64) != 5 || result["reported"].(bool) {
		t.Fatalf("expected unreported 5/5, got %v", result)
	}
}

func TestWebSocketAuthenticatedReportsLesson(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env, "/ws?category=Numbers&token="+env.token(t, "kid-1"))

	_, started := readNext(conn, t, "started")
	if !started["authenticated"].(bool) {
		t.Fatalf("expected authenticated session, got %v", started)
	}
	result := playToEnd(t, conn)
	if !result["reported"].(bool) || result["points"].(float64) != 50 {
		t.Fatalf("expected reported 50 points, got %v", result)
	}

	progress, _ := env.store.Progress(context.Background(), "kid-1")
	if progress.TotalScore != 50 || progress.CompletedLessons != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestWebSocketEmptyCategory(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env, "/ws?category=Planets")

	_, payload := readNext(conn, t, "empty")
	if payload["empty"] != true || payload["category"] != "Planets" {
		t.Fatalf("unexpected empty payload %v", payload)
	}
}

func TestWebSocketIgnoresAnswerDuringFeedback(t *testing.T) {
	env := newTestEnvWithDelay(t, 300*time.Millisecond)
	conn := dial(t, env, "/ws?category=Food")

	readNext(conn, t, "started")
	_, q := readNext(conn, t, "question")
	answer := translations()[q["prompt"].(string)]
	sendAnswer(t, conn, answer)
	sendAnswer(t, conn, answer)

	_, res := readNext(conn, t, "answerResult")
	if res["state"].(map[string]any)["index"].(float64) != 1 {
		t.Fatalf("expected index 1, got %v", res)
	}
	// the duplicate is dropped; next message is the following question
	_, next := readNext(conn, t, "question")
	if next["index"].(float64) != 1 {
		t.Fatalf("expected second question, got %v", next)
	}
}

func playToEnd(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	answers := translations()
	for {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "question":
			sendAnswer(t, conn, answers[payload["prompt"].(string)])
		case "answerResult":
			if payload["correct"] != true {
				t.Fatalf("expected correct answer, got %v", payload)
			}
		case "result":
			return payload
		default:
			t.Fatalf("unexpected message %s: %v", typ, payload)
		}
	}
}

func dial(t *testing.T, env testEnv, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + env.server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendAnswer(t *testing.T, conn *websocket.Conn, option string) {
	t.Helper()
	msg := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"option": option},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write answer: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
