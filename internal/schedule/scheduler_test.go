package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"memoryd/internal/memstore"
	"memoryd/internal/persona"
)

type countingJob struct {
	runs  atomic.Int32
	block chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return nil
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	c := NewCronScheduler(nil)
	if err := c.AddJob(&countingJob{}, "not a spec"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAddJobDescriptorAndNext(t *testing.T) {
	c := NewCronScheduler(nil)
	if err := c.AddJob(ReindexJob{}, "@every 30m"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddJob(PersonaJob{}, "@daily"); err != nil {
		t.Fatalf("add: %v", err)
	}
	c.Start(context.Background())
	defer c.Stop()
	next, ok := c.Next("reindex")
	if !ok || next.IsZero() || time.Until(next) > 31*time.Minute {
		t.Fatalf("next=%v ok=%v", next, ok)
	}
}

func TestEmptySpecDisablesJob(t *testing.T) {
	c := NewCronScheduler(nil)
	if err := c.AddJob(ReindexJob{}, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, ok := c.Next("reindex"); ok {
		t.Fatalf("disabled job was scheduled")
	}
}

func TestWrapSkipsOverlappingRuns(t *testing.T) {
	c := NewCronScheduler(nil)
	j := &countingJob{block: make(chan struct{})}
	run := c.wrap(j, "@every 1s")
	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	deadline := time.Now().Add(time.Second)
	for j.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	run() // overlaps, skipped
	close(j.block)
	<-done
	if n := j.runs.Load(); n != 1 {
		t.Fatalf("runs=%d", n)
	}
	run()
	if n := j.runs.Load(); n != 2 {
		t.Fatalf("runs after completion=%d", n)
	}
}

type stubIndexer struct{ err error }

func (s stubIndexer) IndexAllMessages(context.Context) (int, error) { return 3, s.err }

type stubAnalyzer struct{ err error }

func (s stubAnalyzer) AnalyzePersona(context.Context) (memstore.Persona, error) {
	return memstore.Persona{}, s.err
}

func TestJobs(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	if err := (ReindexJob{Indexer: stubIndexer{}}).Run(ctx); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if err := (ReindexJob{Indexer: stubIndexer{err: boom}}).Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("reindex err=%v", err)
	}
	if err := (PersonaJob{Analyzer: stubAnalyzer{err: persona.ErrNoMessages}}).Run(ctx); err != nil {
		t.Fatalf("persona without messages: %v", err)
	}
	if err := (PersonaJob{Analyzer: stubAnalyzer{err: boom}}).Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("persona err=%v", err)
	}
	l := zerolog.Nop()
	runJob(ctx, ReindexJob{Indexer: stubIndexer{err: boom}}, l)
}
