package registry

import (
	"testing"

	"github.com/tthomas/go-rpc/payload"
)

func echoHandler() Handler {
	return HandlerFunc(func(req payload.Payload) (payload.Payload, bool) {
		return req, true
	})
}

func TestRegisterFindResolve(t *testing.T) {
	r := New()
	id, err := r.Register("add2", echoHandler())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	gotID, ok := r.Find("add2")
	if !ok || gotID != id {
		t.Fatalf("Find(add2) = %d, %v; want %d, true", gotID, ok, id)
	}

	h, ok := r.Resolve(id)
	if !ok || h == nil {
		t.Fatalf("Resolve(%d) = %v, %v", id, h, ok)
	}
}

func TestFindUnknownMisses(t *testing.T) {
	r := New()
	if _, ok := r.Find("nope"); ok {
		t.Fatal("expected Find(nope) to miss")
	}
}

func TestResolveUnboundMisses(t *testing.T) {
	r := New()
	id, _ := r.Register("add2", echoHandler())
	// Never Find()'d, so the secondary registry has no binding yet.
	if _, ok := r.Resolve(id); ok {
		t.Fatal("expected Resolve to miss before any Find")
	}
}

func TestDuplicateRegisterKeepsID(t *testing.T) {
	r := New()
	id1, _ := r.Register("add2", echoHandler())
	id2, err := r.Register("add2", echoHandler())
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected duplicate register to keep id %d, got %d", id1, id2)
	}
}

func TestDuplicateRegisterSwapsHandler(t *testing.T) {
	r := New()
	id, _ := r.Register("add2", HandlerFunc(func(req payload.Payload) (payload.Payload, bool) {
		return payload.New(1, nil), true
	}))
	r.Find("add2") // bind secondary registry before the replacement

	r.Register("add2", HandlerFunc(func(req payload.Payload) (payload.Payload, bool) {
		return payload.New(2, nil), true
	}))

	h, ok := r.Resolve(id)
	if !ok {
		t.Fatal("expected Resolve to still hit after replacement")
	}
	resp, _ := h.Invoke(payload.Payload{})
	if resp.Data1 != 2 {
		t.Fatalf("expected replaced handler to run, got data1=%d", resp.Data1)
	}
}

func TestRegisterRejectsInvalidName(t *testing.T) {
	r := New()
	if _, err := r.Register("bad\x1fname", echoHandler()); err == nil {
		t.Fatal("expected error for name with byte outside 32-126")
	}
	if _, ok := r.Find("bad\x1fname"); ok {
		t.Fatal("expected no entry to have been added")
	}
}

func TestRegisterRejectsNilHandler(t *testing.T) {
	r := New()
	if _, err := r.Register("add2", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := New()
	if _, err := r.Register("", echoHandler()); err == nil {
		t.Fatal("expected error for empty name")
	}
}
