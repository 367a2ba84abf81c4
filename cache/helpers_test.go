package cache

import (
	"context"
	"time"
)

type countingFetcher struct {
	values map[string]string
	errs   map[string]error
	calls  map[string]int
}

func newCountingFetcher(values map[string]string) *countingFetcher {
	if values == nil {
		values = make(map[string]string)
	}
	return &countingFetcher{
		values: values,
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *countingFetcher) GetParameter(_ context.Context, name string) (string, error) {
	f.calls[name]++
	if err, ok := f.errs[name]; ok {
		return "", err
	}
	val, ok := f.values[name]
	if !ok {
		return "", NotFound(name)
	}
	return val, nil
}

func (f *countingFetcher) total() int {
	var n int
	for _, c := range f.calls {
		n += c
	}
	return n
}

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type recordingObserver struct {
	hits    []string
	misses  map[MissReason][]string
	fetched []string
	failed  []string
	evicted []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{misses: make(map[MissReason][]string)}
}

func (o *recordingObserver) Hit(name string) {
	o.hits = append(o.hits, name)
}

func (o *recordingObserver) Miss(name string, reason MissReason) {
	o.misses[reason] = append(o.misses[reason], name)
}

func (o *recordingObserver) Fetched(name string, _ time.Duration) {
	o.fetched = append(o.fetched, name)
}

func (o *recordingObserver) FetchFailed(name string, _ error, _ time.Duration) {
	o.failed = append(o.failed, name)
}

func (o *recordingObserver) Evicted(name string) {
	o.evicted = append(o.evicted, name)
}
