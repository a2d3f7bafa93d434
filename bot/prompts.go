package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const promptTTL = time.Minute

// prompt correlates a member picker with the op that asked for it. Entries
// are single use and expire on their own.
type prompt struct {
	op       string
	memberID string
	expires  time.Time
}

type promptRegistry struct {
	sync.Mutex
	prompts map[string]*prompt
}

func newPromptRegistry() *promptRegistry {
	r := &promptRegistry{
		prompts: make(map[string]*prompt),
	}

	go func() {
		sweepTimer := time.NewTicker(promptTTL)
		for range sweepTimer.C {
			r.sweep()
		}
	}()

	return r
}

func (r *promptRegistry) create(op, memberID string) string {
	r.Lock()
	defer r.Unlock()

	id := uuid.NewString()
	r.prompts[id] = &prompt{
		op:       op,
		memberID: memberID,
		expires:  time.Now().Add(promptTTL),
	}
	return id
}

// resolve returns the op behind a prompt id and consumes it. Only the member
// who opened the prompt may resolve it.
func (r *promptRegistry) resolve(id, memberID string) (string, bool) {
	r.Lock()
	defer r.Unlock()

	p, ok := r.prompts[id]
	if !ok || p.memberID != memberID || time.Now().After(p.expires) {
		return "", false
	}
	delete(r.prompts, id)
	return p.op, true
}

func (r *promptRegistry) sweep() {
	r.Lock()
	defer r.Unlock()

	now := time.Now()
	for id, p := range r.prompts {
		if now.After(p.expires) {
			delete(r.prompts, id)
		}
	}
}
