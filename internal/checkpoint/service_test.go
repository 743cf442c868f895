package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/quizmate/internal/quiz"
)

type saveCall struct {
	key quiz.ProgressionKey
	pos int
}

type fakeTarget struct {
	mu    sync.Mutex
	calls []saveCall
	err   error
	block chan struct{}
}

func (f *fakeTarget) SaveProgress(_ context.Context, key quiz.ProgressionKey, pos int) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, saveCall{key, pos})
	return f.err
}

func (f *fakeTarget) saved() []saveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]saveCall(nil), f.calls...)
}

// syncBuffer is a bytes.Buffer safe for the worker goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSavesRunInOrder(t *testing.T) {
	target := &fakeTarget{}
	s := NewService(target)
	s.Save("unit01", 0)
	s.Save("unit01", 1)
	s.Save("wrong", 4)
	s.Close()

	got := target.saved()
	want := []saveCall{{"unit01", 0}, {"unit01", 1}, {"wrong", 4}}
	if len(got) != len(want) {
		t.Fatalf("saved %d calls, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEmptyKeyIgnored(t *testing.T) {
	target := &fakeTarget{}
	s := NewService(target)
	s.Save("", 3)
	s.Close()

	if n := len(target.saved()); n != 0 {
		t.Errorf("saved %d calls, want 0", n)
	}
}

func TestFailuresAreLoggedNotRetried(t *testing.T) {
	var buf syncBuffer
	target := &fakeTarget{err: errors.New("boom")}
	s := NewService(target, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	s.Save("unit01", 2)
	s.Close()

	if n := len(target.saved()); n != 1 {
		t.Errorf("saved %d calls, want 1", n)
	}
	if !strings.Contains(buf.String(), "save progress failed") {
		t.Errorf("log = %q, want failure entry", buf.String())
	}
}

func TestFullQueueDropsOldest(t *testing.T) {
	var buf syncBuffer
	target := &fakeTarget{block: make(chan struct{})}
	s := NewService(target, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	// One job is held by the worker, QueueSize wait in the channel.
	last := QueueSize + 5
	for i := range last + 1 {
		s.Save("unit01", i)
	}
	close(target.block)
	s.Close()

	got := target.saved()
	if len(got) < QueueSize || len(got) > QueueSize+1 {
		t.Fatalf("saved %d calls, want %d or %d", len(got), QueueSize, QueueSize+1)
	}
	if got[len(got)-1].pos != last {
		t.Errorf("last saved pos = %d, want the latest %d", got[len(got)-1].pos, last)
	}
	for i := 1; i < len(got); i++ {
		if got[i].pos <= got[i-1].pos {
			t.Fatalf("saves out of order: %v", got)
		}
	}
	if !strings.Contains(buf.String(), "queue full") {
		t.Errorf("log = %q, want drop entry", buf.String())
	}
}

func TestSaveAfterClose(t *testing.T) {
	target := &fakeTarget{}
	s := NewService(target)
	s.Close()
	s.Save("unit01", 1)
	s.Close()

	if n := len(target.saved()); n != 0 {
		t.Errorf("saved %d calls, want 0", n)
	}
}
