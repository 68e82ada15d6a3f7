package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewIsSortedAndParsable(t *testing.T) {
	prev := ""
	for i := 0; i < 100; i++ {
		id := New()
		if len(id) != 26 {
			t.Fatalf("unexpected length %d", len(id))
		}
		if id <= prev {
			t.Fatalf("ids not increasing: %s after %s", id, prev)
		}
		prev = id
	}
	u, err := ulid.ParseStrict(prev)
	if err != nil {
		t.Fatalf("expected id to parse: %v", err)
	}
	if time.Since(ulid.Time(u.Time())) > time.Minute {
		t.Fatalf("unexpected timestamp %v", ulid.Time(u.Time()))
	}
}
