package relay

import (
	"fmt"
	"sync"
	"testing"
)

func ev(id string) Event { return Event{ID: id} }

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestFeedMostRecentFirstAndCapped(t *testing.T) {
	f := NewFeed(3)
	for i := 1; i <= 5; i++ {
		f.Add(ev(fmt.Sprint(i)))
	}
	got := ids(f.Snapshot())
	if fmt.Sprint(got) != "[5 4 3]" {
		t.Errorf("feed = %v, want [5 4 3]", got)
	}

	f.Clear()
	if len(f.Snapshot()) != 0 {
		t.Error("Clear left items behind")
	}
	f.Add(ev("x"))
	if got := ids(f.Snapshot()); len(got) != 1 || got[0] != "x" {
		t.Errorf("after clear = %v", got)
	}
}

func TestFeedKeepsDuplicates(t *testing.T) {
	f := NewFeed(5)
	f.Add(ev("a"))
	f.Add(ev("a"))
	if n := len(f.Snapshot()); n != 2 {
		t.Errorf("len = %d, want 2", n)
	}
}

func TestFeedDefaultCap(t *testing.T) {
	if NewFeed(0).Cap() != DefaultFeedCap {
		t.Error("default cap not applied")
	}
}

func TestFeedSnapshotIsCopy(t *testing.T) {
	f := NewFeed(2)
	f.Add(ev("a"))
	s := f.Snapshot()
	s[0].ID = "mutated"
	if f.Snapshot()[0].ID != "a" {
		t.Error("snapshot aliases feed storage")
	}
}

func TestFeedConcurrentAdds(t *testing.T) {
	f := NewFeed(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.Add(ev(fmt.Sprint(i)))
			_ = f.Snapshot()
		}(i)
	}
	wg.Wait()
	if n := len(f.Snapshot()); n != 10 {
		t.Errorf("len = %d, want 10", n)
	}
}
