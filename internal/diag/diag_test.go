package diag

import (
	"testing"

	"github.com/wickwirew/sqlsig/internal/srcmap"
)

func TestBagAccumulatesInOrder(t *testing.T) {
	b := NewBag()
	b.Errorf("a.sql", srcmap.Span{}, "first")
	b.Warnf("a.sql", srcmap.Span{}, "second")
	b.Infof("a.sql", srcmap.Span{}, "third")

	if got := b.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	all := b.All()
	want := []struct {
		sev Severity
		msg string
	}{
		{Error, "first"},
		{Warning, "second"},
		{Info, "third"},
	}
	for i, w := range want {
		if all[i].Severity != w.sev || all[i].Message != w.msg {
			t.Errorf("item %d = {%s %q}, want {%s %q}", i, all[i].Severity, all[i].Message, w.sev, w.msg)
		}
	}
}

func TestHasErrorsOnlyTrueWithAnErrorSeverityItem(t *testing.T) {
	b := NewBag()
	if b.HasErrors() {
		t.Errorf("an empty bag should not report errors")
	}
	b.Warnf("a.sql", srcmap.Span{}, "just a warning")
	if b.HasErrors() {
		t.Errorf("a bag with only warnings should not report errors")
	}
	b.Errorf("a.sql", srcmap.Span{}, "now an error")
	if !b.HasErrors() {
		t.Errorf("a bag with an error-severity item should report errors")
	}
}

func TestErrorfFormatsMessage(t *testing.T) {
	b := NewBag()
	b.Errorf("a.sql", srcmap.Span{}, "unexpected token %q at %d", ";", 12)
	got := b.All()[0].Message
	want := `unexpected token ";" at 12`
	if got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestExtendAppendsInOrderAndToleratesNil(t *testing.T) {
	a := NewBag()
	a.Errorf("a.sql", srcmap.Span{}, "from a")
	b := NewBag()
	b.Warnf("b.sql", srcmap.Span{}, "from b")

	a.Extend(b)
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	if a.All()[1].Message != "from b" {
		t.Errorf("Extend did not preserve order: %+v", a.All())
	}

	a.Extend(nil)
	if a.Len() != 2 {
		t.Errorf("Extend(nil) should be a no-op, Len() = %d", a.Len())
	}
}
