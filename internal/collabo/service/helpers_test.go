package service

import (
	"sync"
	"time"
)

// tickingClock returns a clock that advances one second on every call.
func tickingClock() clock {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func strPtr(s string) *string { return &s }
