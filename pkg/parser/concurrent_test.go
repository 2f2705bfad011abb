package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConcurrentParsing checks that many goroutines can share a small pool
// without deadlocks.
func TestConcurrentParsing(t *testing.T) {
	const poolSize = 4
	manager := NewParserManagerWithPoolSize(testLogger(), poolSize)
	defer manager.Close()

	const numGoroutines = 64
	var wg sync.WaitGroup
	errChan := make(chan error, numGoroutines)

	sources := map[Dialect][]byte{
		DialectTypeScript: []byte("export type Pair<T> = [T, T];"),
		DialectTSX:        []byte("export const X = () => <span />;"),
	}

	for i := 0; i < numGoroutines; i++ {
		dialect := DialectTypeScript
		if i%2 == 1 {
			dialect = DialectTSX
		}
		wg.Add(1)
		go func(d Dialect) {
			defer wg.Done()
			tree, err := manager.Parse(sources[d], d)
			if err != nil {
				errChan <- err
				return
			}
			tree.Close()
		}(dialect)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	assert.Empty(t, errs)

	stats := manager.GetStats()
	assert.Equal(t, numGoroutines, stats.ParsesCalled)
	assert.LessOrEqual(t, stats.ParsersCreated, 2*poolSize, "one pool per dialect")
	assert.GreaterOrEqual(t, stats.ParsersCreated, 2)
}

func BenchmarkParse(b *testing.B) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("export interface Foo extends Bar<'test'> { a: string; b?: number[] }")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree, err := manager.Parse(source, DialectTypeScript)
		if err != nil {
			b.Fatal(err)
		}
		tree.Close()
	}
}
