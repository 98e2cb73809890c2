package pool

import (
	"io"
	"runtime"
	"sync"
)

// task is a single evaluation f(i), run by whichever worker picks it up.
type task struct {
	i    int
	f    func(int) interface{}
	out  []interface{}
	done *sync.WaitGroup
}

func worker(tasks <-chan task) {
	for t := range tasks {
		t.out[t.i] = t.f(t.i)
		t.done.Done()
	}
}

// Pool is a fixed set of workers, used to spread independent group operations
// over several cores.
//
// Functions needing a *Pool also accept nil, and then do the work on the
// calling goroutine.
type Pool struct {
	tasks       chan task
	workerCount int
	closeOnce   sync.Once
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		tasks:       make(chan task),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go worker(p.tasks)
	}
	return p
}

// Workers returns the number of goroutines in the pool, or 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// TearDown stops the workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() { close(p.tasks) })
}

// Parallelize calls f count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
// Parallelize may be called from several goroutines at once.
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.tasks <- task{i: i, f: f, out: results, done: &wg}
	}
	wg.Wait()
	return results
}

// Map is a typed wrapper around Parallelize.
func Map[T any](p *Pool, count int, f func(int) T) []T {
	raw := p.Parallelize(count, func(i int) interface{} { return f(i) })
	out := make([]T, count)
	for i, r := range raw {
		if r != nil {
			out[i] = r.(T)
		}
	}
	return out
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// Every call to Read holds a mutex, so concurrent callers never observe the
// same bytes twice.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}

// ReadFull behaves like io.ReadFull, but holds the lock for the whole read, so
// that a single caller receives contiguous output.
func (r *LockedReader) ReadFull(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return io.ReadFull(r.reader, p)
}
