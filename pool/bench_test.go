package pool

import "testing"

func benchValue() []byte { return make([]byte, 0, 4096) }

func BenchmarkPull(b *testing.B) {
	p := New(1, benchValue)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := p.Pull(benchValue)
		g.Release()
	}
}

func BenchmarkPullOwned(b *testing.B) {
	p := New(1, benchValue)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := p.PullOwned(benchValue)
		g.Release()
	}
}

func BenchmarkTryPull(b *testing.B) {
	p := New(1, benchValue)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g, ok := p.TryPull()
		if !ok {
			b.Fatal("unexpected saturation")
		}
		g.Release()
	}
}

func BenchmarkPullParallel(b *testing.B) {
	p := New(64, benchValue)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g := p.Pull(benchValue)
			g.Release()
		}
	})
}
