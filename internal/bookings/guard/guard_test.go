package guard

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"booking_portal_backend/platform/logger"
)

func newTestGuard() (*Guard, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(logger.NewWithHandler(slog.NewTextHandler(&buf, nil))), &buf
}

func TestAdmitConsumesIntentOnce(t *testing.T) {
	g, buf := newTestGuard()
	intent := g.Issue("session-1", TriggerAddressConfirm)

	if !g.Admit("session-1", intent) {
		t.Fatalf("expected issued intent to be admitted")
	}
	if g.Admit("session-1", intent) {
		t.Fatalf("expected replayed intent to be refused")
	}
	if !strings.Contains(buf.String(), "mutation_refused") {
		t.Fatalf("expected refusal to be logged, got %q", buf.String())
	}
}

func TestAdmitRefusesMissingOrForeignIntent(t *testing.T) {
	g, _ := newTestGuard()
	intent := g.Issue("session-1", TriggerVolumeSave)

	cases := map[string]struct {
		scope  string
		intent Intent
	}{
		"empty":         {scope: "session-1", intent: Intent{}},
		"wrong trigger": {scope: "session-1", intent: Intent{Trigger: TriggerCancel, Token: intent.Token}},
		"wrong token":   {scope: "session-1", intent: Intent{Trigger: TriggerVolumeSave, Token: "forged"}},
		"other scope":   {scope: "session-2", intent: intent},
	}
	for name, tc := range cases {
		if g.Admit(tc.scope, tc.intent) {
			t.Fatalf("%s: expected refusal", name)
		}
	}
	if !g.Admit("session-1", intent) {
		t.Fatalf("expected refusals to leave the real intent outstanding")
	}
}

func TestIssueReplacesAndRevokeClears(t *testing.T) {
	g, _ := newTestGuard()
	first := g.Issue("session-1", TriggerServiceToggle)
	second := g.Issue("session-1", TriggerServiceToggle)

	if g.Admit("session-1", first) {
		t.Fatalf("expected superseded intent to be refused")
	}

	g.Revoke("session-1")
	if g.Admit("session-1", second) {
		t.Fatalf("expected revoked intent to be refused")
	}
	if g.Verify("session-1", second) {
		t.Fatalf("expected nothing outstanding after revoke")
	}
}

func TestVerifyDoesNotConsume(t *testing.T) {
	g, buf := newTestGuard()
	intent := g.Issue("session-1", TriggerCancel)

	if g.Verify("session-1", Intent{Trigger: TriggerCancel, Token: "forged"}) {
		t.Fatalf("expected forged intent to fail verification")
	}
	if !strings.Contains(buf.String(), "token mismatch") {
		t.Fatalf("expected failed verification to be logged, got %q", buf.String())
	}
	for i := 0; i < 2; i++ {
		if !g.Verify("session-1", intent) {
			t.Fatalf("verification %d: expected issued intent to verify", i)
		}
	}
	if !g.Admit("session-1", intent) {
		t.Fatalf("expected verified intent to still be admitted")
	}
}
