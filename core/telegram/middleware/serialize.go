package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

type userLock struct {
	mu   sync.Mutex
	refs int
}

// SerializePerUser ensures updates from the same user are processed one at a
// time, so multi-step conversation transitions never interleave. Updates from
// different users proceed concurrently.
func SerializePerUser() tele.MiddlewareFunc {
	var (
		mu    sync.Mutex
		locks = make(map[int64]*userLock)
	)

	acquire := func(id int64) *userLock {
		mu.Lock()
		l, ok := locks[id]
		if !ok {
			l = &userLock{}
			locks[id] = l
		}
		l.refs++
		mu.Unlock()
		l.mu.Lock()
		return l
	}

	release := func(id int64, l *userLock) {
		l.mu.Unlock()
		mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(locks, id)
		}
		mu.Unlock()
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			l := acquire(user.ID)
			defer release(user.ID, l)
			return next(c)
		}
	}
}
