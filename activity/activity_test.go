package activity

import (
	"strconv"
	"sync"
	"testing"

	"github.com/use-agent/harvest/models"
)

func entry(n int) models.ActivityEntry {
	return models.ActivityEntry{SourceID: strconv.Itoa(n), Success: true}
}

func TestLog_EvictsOldestFirst(t *testing.T) {
	log := New(DefaultCapacity)
	for i := 1; i <= 150; i++ {
		log.Append(entry(i))
	}

	if got := log.Len(); got != 100 {
		t.Fatalf("expected 100 entries, got %d", got)
	}
	entries := log.Entries()
	if entries[0].SourceID != "51" {
		t.Errorf("oldest entry = call #%s, want #51", entries[0].SourceID)
	}
	if entries[99].SourceID != "150" {
		t.Errorf("newest entry = call #%s, want #150", entries[99].SourceID)
	}
	for i := 1; i < len(entries); i++ {
		prev, _ := strconv.Atoi(entries[i-1].SourceID)
		cur, _ := strconv.Atoi(entries[i].SourceID)
		if cur != prev+1 {
			t.Fatalf("entries out of order at %d: %d then %d", i, prev, cur)
		}
	}
	if log.Total() != 150 {
		t.Errorf("total = %d", log.Total())
	}
}

func TestLog_Recent(t *testing.T) {
	log := New(5)
	for i := 1; i <= 3; i++ {
		log.Append(entry(i))
	}
	recent := log.Recent(10)
	if len(recent) != 3 || recent[0].SourceID != "3" || recent[2].SourceID != "1" {
		t.Errorf("unexpected recent before wrap: %+v", recent)
	}

	for i := 4; i <= 8; i++ {
		log.Append(entry(i))
	}
	recent = log.Recent(2)
	if len(recent) != 2 || recent[0].SourceID != "8" || recent[1].SourceID != "7" {
		t.Errorf("unexpected recent after wrap: %+v", recent)
	}
	if got := log.Recent(0); len(got) != 0 {
		t.Errorf("Recent(0) = %v", got)
	}
}

func TestLog_AssignsIDs(t *testing.T) {
	log := New(2)
	a := log.Append(entry(1))
	b := log.Append(models.ActivityEntry{ID: "fixed"})
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected a generated id, got %q", a.ID)
	}
	if b.ID != "fixed" {
		t.Errorf("existing id overwritten: %q", b.ID)
	}
}

func TestLog_EmptyAndDefaultCapacity(t *testing.T) {
	log := New(0)
	if log.Len() != 0 || len(log.Entries()) != 0 || len(log.Recent(3)) != 0 {
		t.Error("new log should be empty")
	}
	for i := 0; i < DefaultCapacity+1; i++ {
		log.Append(entry(i))
	}
	if log.Len() != DefaultCapacity {
		t.Errorf("len = %d", log.Len())
	}
}

func TestLog_ConcurrentAppends(t *testing.T) {
	log := New(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				log.Append(entry(i))
				_ = log.Recent(5)
			}
		}()
	}
	wg.Wait()
	if log.Len() != 50 || log.Total() != 800 {
		t.Errorf("len %d total %d", log.Len(), log.Total())
	}
}
