package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"black-oil/internal/game"
	"black-oil/internal/store"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypeOpenSession, OpenSessionPayload{SessionID: "abc"})
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	if msg.ID == "" || msg.Timestamp == 0 {
		t.Errorf("Expected ID and timestamp, got %+v", msg)
	}
	if string(msg.Payload) != `{"sessionId":"abc"}` {
		t.Errorf("Unexpected payload %s", msg.Payload)
	}
}

func TestReply_KeepsRequestID(t *testing.T) {
	req, _ := NewMessage(TypePing, nil)
	resp, err := Reply(req, TypePong, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != req.ID || resp.Type != TypePong {
		t.Errorf("Expected pong for %s, got %s %s", req.ID, resp.Type, resp.ID)
	}

	unsolicited, _ := Reply(nil, TypeError, ErrorPayload{Code: ErrCodeInternalError})
	if unsolicited.ID == "" {
		t.Error("Expected a fresh ID without a request")
	}
}

func TestParsePayload(t *testing.T) {
	var msg Message
	data := `{"type":"action","id":"1","timestamp":5,"payload":{"type":"drill","row":2,"col":3}}`
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		t.Fatal(err)
	}
	var p ActionPayload
	if err := msg.ParsePayload(&p); err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if p.Type != game.ActionDrill || p.Row != 2 || p.Col != 3 {
		t.Errorf("Unexpected action %+v", p.Action)
	}

	empty := Message{Type: TypeNextDay}
	if err := empty.ParsePayload(&p); err != nil {
		t.Errorf("Expected empty payload to be accepted, got %v", err)
	}
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{nil, ""},
		{game.ErrInsufficientCash, ErrCodeInsufficientCash},
		{fmt.Errorf("buy: %w", game.ErrAlreadyOwned), ErrCodeAlreadyOwned},
		{game.ErrSeasonOver, ErrCodeSeasonOver},
		{fmt.Errorf("session x: %w", store.ErrSessionNotFound), ErrCodeSessionNotFound},
		{errors.New("disk on fire"), ErrCodeInternalError},
	}
	for _, tt := range tests {
		if got := CodeFor(tt.err); got != tt.want {
			t.Errorf("CodeFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestErrorPayload_Error(t *testing.T) {
	e := &ErrorPayload{Code: ErrCodeNoSession, Message: "open a session first"}
	if e.Error() != "no_session: open a session first" {
		t.Errorf("Unexpected error text %q", e.Error())
	}
}
