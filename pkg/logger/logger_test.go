package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithUserID(ctx, "42")
	logg.Info(ctx, "hello")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"user_id":"42"`, `"service":"test"`, `"hello"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %s, got %s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("debug should parse")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("empty should default to info")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Fatal("unknown should default to info")
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})
	logg.Error(context.Background(), "boom", nil)
	if !strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("expected stack field, got %s", buf.String())
	}
}
