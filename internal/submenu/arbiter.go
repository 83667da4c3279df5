package submenu

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Owner is anything the Arbiter can close.
type Owner interface {
	// Dismiss closes the owner's popout synchronously.
	Dismiss()
}

// Token identifies one granted claim.
type Token string

// Arbiter allows one popout to be open across a panel at a time. It is the
// single authority for both the exclusivity rule and the rule that hovering
// another trigger in the same menu closes the current popout.
type Arbiter struct {
	logger *slog.Logger

	mu      sync.Mutex
	current Owner
	token   Token
}

// NewArbiter creates an arbiter.
func NewArbiter(logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{logger: logger}
}

// Claim registers o as the open popout, dismissing any other owner first.
// fresh is false when o already holds the claim; the existing token is
// returned and nothing changes.
func (a *Arbiter) Claim(o Owner) (tok Token, fresh bool) {
	a.mu.Lock()
	if a.current == o {
		tok = a.token
		a.mu.Unlock()
		return tok, false
	}
	prev := a.current
	a.mu.Unlock()

	// Dismiss outside the lock: the previous owner releases its claim while closing.
	if prev != nil {
		a.logger.Debug("dismissing popout for new claim")
		prev.Dismiss()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil && a.current != o {
		// A misbehaving owner that did not release while dismissing.
		a.logger.Warn("previous popout did not release its claim", "token", a.token)
	}
	a.current = o
	a.token = Token(ulid.Make().String())
	return a.token, true
}

// Release drops the claim identified by tok. Stale tokens are ignored.
func (a *Arbiter) Release(tok Token) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if tok == "" || tok != a.token {
		return false
	}
	a.current = nil
	a.token = ""
	return true
}

// Preempt dismisses the current owner unless it is o.
func (a *Arbiter) Preempt(o Owner) {
	a.mu.Lock()
	prev := a.current
	a.mu.Unlock()

	if prev != nil && prev != o {
		prev.Dismiss()
	}
}

// DismissAll dismisses the current owner, if any.
func (a *Arbiter) DismissAll() {
	a.Preempt(nil)
}

// Active returns the current owner and its token.
func (a *Arbiter) Active() (Owner, Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.token
}
