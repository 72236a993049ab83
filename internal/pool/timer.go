// Package pool holds reusable timers and frame buffers shared by the sign
// session and the transports.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a stopped-and-reset timer firing after d.
//
// Return it with PutTimer once the caller no longer selects on it.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		t.Reset(d)
		return t
	}
	return time.NewTimer(d)
}

// PutTimer stops t and returns it to the pool.
//
// t cannot be accessed after returning to the pool.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
