package bot

import (
	"testing"
	"time"
)

func TestPromptResolve(t *testing.T) {
	r := newPromptRegistry()
	id := r.create("disconnect", "u1")

	op, ok := r.resolve(id, "u1")
	if !ok || op != "disconnect" {
		t.Errorf("resolve() = %v, %v, want disconnect, true", op, ok)
	}

	// single use
	if _, ok := r.resolve(id, "u1"); ok {
		t.Errorf("resolve() second use succeeded, want failure")
	}
}

func TestPromptWrongMember(t *testing.T) {
	r := newPromptRegistry()
	id := r.create("transfer", "u1")

	if _, ok := r.resolve(id, "u2"); ok {
		t.Errorf("resolve() by another member succeeded, want failure")
	}

	// the prompt must survive the failed attempt
	if op, ok := r.resolve(id, "u1"); !ok || op != "transfer" {
		t.Errorf("resolve() = %v, %v, want transfer, true", op, ok)
	}
}

func TestPromptUnknownID(t *testing.T) {
	r := newPromptRegistry()
	if _, ok := r.resolve("nope", "u1"); ok {
		t.Errorf("resolve() on unknown id succeeded, want failure")
	}
}

func TestPromptExpiry(t *testing.T) {
	r := newPromptRegistry()
	id := r.create("permit", "u1")

	r.Lock()
	r.prompts[id].expires = time.Now().Add(-time.Second)
	r.Unlock()

	if _, ok := r.resolve(id, "u1"); ok {
		t.Errorf("resolve() on expired prompt succeeded, want failure")
	}

	id2 := r.create("permit", "u1")
	r.Lock()
	r.prompts[id2].expires = time.Now().Add(-time.Second)
	r.Unlock()

	r.sweep()

	r.Lock()
	n := len(r.prompts)
	r.Unlock()
	if n != 0 {
		t.Errorf("sweep() left %v prompts, want 0", n)
	}
}
