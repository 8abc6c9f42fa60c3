package hydration

import (
	"errors"
	"strings"
	"testing"
)

func TestDetect_Match(t *testing.T) {
	if err := Detect(Counts{Total: 10, Resolved: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Detect(Counts{}); err != nil {
		t.Fatalf("empty page: %v", err)
	}
}

func TestDetect_Mismatch(t *testing.T) {
	missing := []HitRef{{Index: "posts", ID: "3"}, {Index: "posts", ID: "8"}, {Index: "users", ID: "1"}}
	err := Detect(Counts{Total: 10, Resolved: 7, MissingHits: missing})

	var hm *HydrationMismatchError
	if !errors.As(err, &hm) {
		t.Fatalf("err = %v, want *HydrationMismatchError", err)
	}
	if hm.Total != 10 || hm.Resolved != 7 || hm.Missing != 3 {
		t.Errorf("counts = %+v", hm)
	}
	if len(hm.MissingHits) != 3 {
		t.Errorf("missing hits = %v", hm.MissingHits)
	}
	if !errors.Is(err, ErrHydrationMismatch) {
		t.Error("must unwrap to ErrHydrationMismatch")
	}

	msg := err.Error()
	for _, want := range []string{"10 hits", "7 records", "3 missing", "posts/8", "users/1", "mode"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}

func TestDetect_MoreResolvedThanTotal(t *testing.T) {
	err := Detect(Counts{Total: 2, Resolved: 3})
	var hm *HydrationMismatchError
	if !errors.As(err, &hm) {
		t.Fatalf("err = %v", err)
	}
	if hm.Missing != 0 {
		t.Errorf("missing = %d, want 0", hm.Missing)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStrict, false},
		{"strict", ModeStrict, false},
		{"LOG", ModeLog, false},
		{" ignore ", ModeIgnore, false},
		{"panic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("mode = %q, want %q", got, tt.want)
			}
		})
	}
}
