package events

import "testing"

func TestMutationMessageRoundTrip(t *testing.T) {
	msg := NewMutationMessage("transaction", ActionCreated, 42)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := MutationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Entity != "transaction" || got.Action != ActionCreated || got.ID != 42 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}
}

func TestMutationMessageFromJSONInvalid(t *testing.T) {
	if _, err := MutationMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed payload")
	}
}
