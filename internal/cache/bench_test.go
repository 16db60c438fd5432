package cache

import (
	"context"
	"strconv"
	"testing"
	"time"
)

// BenchmarkBoundedSet measures inserts at capacity, where every Set evicts
func BenchmarkBoundedSet(b *testing.B) {
	c := NewBounded[string, int](100, time.Minute)
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = "key-" + strconv.Itoa(i)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c.Set(keys[i%len(keys)], i)
	}
}

// BenchmarkBoundedGetParallel measures contended cache hits
func BenchmarkBoundedGetParallel(b *testing.B) {
	c := NewBounded[string, int](100, time.Minute)
	for i := 0; i < 100; i++ {
		c.Set("key-"+strconv.Itoa(i), i)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get("key-" + strconv.Itoa(i%100))
			i++
		}
	})
}

// BenchmarkMemoryTagStoreInvalidate measures dropping a tag of 1000 entries
func BenchmarkMemoryTagStoreInvalidate(b *testing.B) {
	ctx := context.Background()
	s := NewMemoryTagStore()
	value := []byte(`{"ok":true}`)

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < 1000; j++ {
			_ = s.Set(ctx, "k"+strconv.Itoa(j), value, time.Minute, []string{"article"})
		}
		b.StartTimer()

		_, _ = s.InvalidateTag(ctx, "article")
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "entries/sec")
}
