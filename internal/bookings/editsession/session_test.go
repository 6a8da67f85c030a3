package editsession

import (
	"errors"
	"testing"
)

var proposal = AddressProposal{StartAddress: "Storgatan 1, Stockholm", EndAddress: "Kungsgatan 9, Uppsala"}

func previewed(t *testing.T) *Session {
	t.Helper()
	s := New("s-1", KindAddress, 1, nil)
	attempt, err := s.BeginPreview(proposal)
	if err != nil {
		t.Fatalf("BeginPreview: %v", err)
	}
	if err := s.PreviewReady(attempt, NewPreview(12, 3000, 3400)); err != nil {
		t.Fatalf("PreviewReady: %v", err)
	}
	return s
}

func TestAddressSessionCannotCommitFromEditing(t *testing.T) {
	s := New("s-1", KindAddress, 1, nil)

	err := s.BeginCommit()
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if s.Phase() != Editing || s.Saving() {
		t.Fatalf("expected session untouched, got %s saving=%v", s.Phase(), s.Saving())
	}

	if _, err := s.BeginPreview(proposal); err != nil {
		t.Fatalf("BeginPreview: %v", err)
	}
	if err := s.BeginCommit(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected commit refused while previewing, got %v", err)
	}
}

func TestAddressSessionHappyPath(t *testing.T) {
	var seen []Phase
	s := New("s-1", KindAddress, 1, func(_ string, _, to Phase) { seen = append(seen, to) })

	attempt, _ := s.BeginPreview(proposal)
	_ = s.PreviewReady(attempt, NewPreview(12, 3000, 3400))

	p, ok := s.Preview()
	if !ok || p.PriceDelta != 400 {
		t.Fatalf("expected +400 preview, got %+v", p)
	}
	if err := s.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit: %v", err)
	}
	if !s.Saving() {
		t.Fatalf("expected saving flag during commit")
	}
	if err := s.CommitSucceeded(); err != nil {
		t.Fatalf("CommitSucceeded: %v", err)
	}

	want := []Phase{Previewing, ConfirmPending, Committing, Committed}
	if len(seen) != len(want) {
		t.Fatalf("unexpected transitions %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("unexpected transitions %v", seen)
		}
	}
	if s.Saving() || s.CanCommit() {
		t.Fatalf("expected committed address session to be final")
	}
}

func TestPreviewFailureStaysEditing(t *testing.T) {
	s := New("s-1", KindAddress, 1, nil)
	attempt, _ := s.BeginPreview(proposal)

	if err := s.PreviewFailed(attempt, "try again"); err != nil {
		t.Fatalf("PreviewFailed: %v", err)
	}
	if s.Phase() != Editing || s.LastError() != "try again" {
		t.Fatalf("expected Editing with error, got %s %q", s.Phase(), s.LastError())
	}
	if _, ok := s.Preview(); ok {
		t.Fatalf("expected no preview")
	}
	if got, ok := s.Proposal(); !ok || got != proposal {
		t.Fatalf("expected proposal retained, got %+v", got)
	}
}

func TestAbortedCommitKeepsPreviewForRetry(t *testing.T) {
	s := previewed(t)

	_ = s.BeginCommit()
	if err := s.CommitFailed("server error"); err != nil {
		t.Fatalf("CommitFailed: %v", err)
	}
	if s.Phase() != Aborted || s.Saving() {
		t.Fatalf("expected Aborted and not saving, got %s saving=%v", s.Phase(), s.Saving())
	}
	if p, ok := s.Preview(); !ok || p.NewPrice != 3400 {
		t.Fatalf("expected preview intact, got %+v", p)
	}
	if err := s.BeginCommit(); err != nil {
		t.Fatalf("expected retry from Aborted, got %v", err)
	}
}

func TestUndoKeepsProposal(t *testing.T) {
	s := previewed(t)
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Phase() != Editing {
		t.Fatalf("expected Editing, got %s", s.Phase())
	}
	if _, ok := s.Preview(); ok {
		t.Fatalf("expected preview discarded")
	}
	if got, _ := s.Proposal(); got != proposal {
		t.Fatalf("expected proposal retained")
	}
}

func TestInvalidateDropsPreviewKeepsProposal(t *testing.T) {
	s := previewed(t)
	if err := s.Invalidate("price changed"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if s.Phase() != Editing || s.CanCommit() {
		t.Fatalf("expected Editing without commit ability, got %s", s.Phase())
	}
	if _, ok := s.Preview(); ok {
		t.Fatalf("expected preview discarded")
	}
	if got, _ := s.Proposal(); got != proposal {
		t.Fatalf("expected proposal retained")
	}
	if s.LastError() != "price changed" {
		t.Fatalf("expected message kept, got %q", s.LastError())
	}

	fresh := New("s-1", KindAddress, 1, nil)
	if err := fresh.Invalidate("x"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected Invalidate refused while editing, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"address", "volume", "schedule", "services", "cancellation", "checklist", "review"} {
		if _, err := ParseKind(name); err != nil {
			t.Fatalf("ParseKind(%q): %v", name, err)
		}
	}
	if _, err := ParseKind("photos"); err == nil {
		t.Fatalf("expected unknown kind to be refused")
	}
}

func TestSupersededPreviewIsStale(t *testing.T) {
	s := New("s-1", KindAddress, 1, nil)
	first, _ := s.BeginPreview(proposal)
	second, _ := s.BeginPreview(AddressProposal{StartAddress: "Vasagatan 2", EndAddress: "Drottninggatan 5"})

	if err := s.PreviewReady(first, NewPreview(3, 3000, 3100)); !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expected stale preview, got %v", err)
	}
	if err := s.PreviewReady(second, NewPreview(5, 3000, 3200)); err != nil {
		t.Fatalf("PreviewReady: %v", err)
	}
}

func TestResetFromEveryPhase(t *testing.T) {
	phases := map[string]func() *Session{
		"editing":         func() *Session { return New("s", KindAddress, 1, nil) },
		"confirm pending": func() *Session { return previewed(t) },
		"committing": func() *Session {
			s := previewed(t)
			_ = s.BeginCommit()
			return s
		},
		"aborted": func() *Session {
			s := previewed(t)
			_ = s.BeginCommit()
			_ = s.CommitFailed("x")
			return s
		},
	}

	for name, build := range phases {
		s := build()
		s.Reset()
		if s.Phase() != Editing || s.Saving() || s.LastError() != "" || s.CanCommit() {
			t.Fatalf("%s: expected clean Editing session", name)
		}
		if _, ok := s.Preview(); ok {
			t.Fatalf("%s: expected no preview after reset", name)
		}
		if _, ok := s.Proposal(); ok {
			t.Fatalf("%s: expected no proposal after reset", name)
		}
	}
}

func TestSinglePhaseSessions(t *testing.T) {
	s := New("s-2", KindServices, 1, nil)
	if _, err := s.BeginPreview(proposal); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected services session to refuse previews, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.BeginCommit(); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
		if err := s.CommitSucceeded(); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}
}

func TestSettleFailsInterruptedCommit(t *testing.T) {
	s := previewed(t)
	_ = s.BeginCommit()
	s.Settle()
	if s.Phase() != Aborted || s.Saving() {
		t.Fatalf("expected Settle to abort an open commit, got %s", s.Phase())
	}
}
