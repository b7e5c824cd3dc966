package audit

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).With(logger.RequestID("req-1")))

	Log(ctx, OrganizationSuspended, logger.OrgID("org-1"), logger.Count(3))

	entries := logs.FilterMessage("audit").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event"] != "organization.suspended" || fields["audit"] != true {
		t.Fatalf("fields = %v", fields)
	}
	if fields["request_id"] != "req-1" || fields["organization_id"] != "org-1" {
		t.Fatalf("fields = %v", fields)
	}
}
