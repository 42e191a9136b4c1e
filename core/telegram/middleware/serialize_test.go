package middleware

import (
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	sender *tele.User
}

func (f fakeContext) Sender() *tele.User { return f.sender }

func TestSerializePerUserNoInterleaving(t *testing.T) {
	mw := SerializePerUser()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	handler := mw(func(c tele.Context) error {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	c := fakeContext{sender: &tele.User{ID: 7}}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = handler(c)
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("same-user updates overlapped: max concurrent = %d", maxSeen)
	}
}

func TestSerializePerUserDistinctUsersProceed(t *testing.T) {
	mw := SerializePerUser()
	entered := make(chan int64, 2)
	proceed := make(chan struct{})

	handler := mw(func(c tele.Context) error {
		entered <- c.Sender().ID
		<-proceed
		return nil
	})

	go func() { _ = handler(fakeContext{sender: &tele.User{ID: 1}}) }()
	go func() { _ = handler(fakeContext{sender: &tele.User{ID: 2}}) }()

	// Both users must enter the handler without either blocking the other.
	seen := map[int64]bool{}
	for i := 0; i < 2; i++ {
		seen[<-entered] = true
	}
	close(proceed)

	if !seen[1] || !seen[2] {
		t.Fatalf("expected both users to enter, saw %v", seen)
	}
}
