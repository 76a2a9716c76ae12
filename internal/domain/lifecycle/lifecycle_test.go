package lifecycle_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/lifecycle"
)

func TestDeleteIsOneWay(t *testing.T) {
	s := lifecycle.Active

	next, err := s.Delete()
	if err != nil {
		t.Fatalf("unexpected error deleting active state: %v", err)
	}
	if !next.IsDeleted() {
		t.Fatalf("got %s, want deleted", next)
	}

	again, err := next.Delete()
	if !errors.Is(err, lifecycle.ErrAlreadyDeleted) {
		t.Fatalf("got err %v, want ErrAlreadyDeleted", err)
	}
	if !again.IsDeleted() {
		t.Fatalf("state changed after failed delete: %s", again)
	}
}

func TestStateJSONUsesFlag(t *testing.T) {
	tests := []struct {
		state lifecycle.State
		want  string
	}{
		{lifecycle.Active, "false"},
		{lifecycle.Deleted, "true"},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.state)
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.state, err)
		}
		if string(b) != tt.want {
			t.Fatalf("marshal %s: got %s want %s", tt.state, b, tt.want)
		}

		var back lifecycle.State
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back != tt.state {
			t.Fatalf("unmarshal %s: got %s want %s", b, back, tt.state)
		}
	}
}
