package voice

import (
	"sync"
	"testing"
)

func TestInterruptSignalIdempotent(t *testing.T) {
	i := NewInterrupt()
	if i.Interrupted() {
		t.Fatal("new interrupt must start clear")
	}
	i.Signal()
	i.Signal()
	if !i.Interrupted() {
		t.Fatal("signalled interrupt must report interrupted")
	}
	i.Clear()
	if i.Interrupted() {
		t.Fatal("cleared interrupt must report clear")
	}
}

func TestInterruptConcurrentSignal(t *testing.T) {
	i := NewInterrupt()
	var wg sync.WaitGroup
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			i.Signal()
		}()
	}
	wg.Wait()
	if !i.Interrupted() {
		t.Fatal("interrupt lost concurrent signal")
	}
}
