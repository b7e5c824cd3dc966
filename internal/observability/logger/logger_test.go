package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFrom_ContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core).With(RequestID("req-1"))

	ctx := ToContext(context.Background(), l)
	From(ctx).Info("hello", OrgID("org-1"))

	if logs.Len() != 1 {
		t.Fatalf("entries = %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["organization_id"] != "org-1" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestFrom_FallbackSingleton(t *testing.T) {
	if From(context.Background()) != L() {
		t.Fatal("From without logger must return singleton")
	}
}
