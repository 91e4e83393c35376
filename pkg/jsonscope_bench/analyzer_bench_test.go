package jsonscope_bench

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jsonscope/jsonscope/pkg/jsonscope"
)

// ============================================================================
// Benchmark Fixtures
// ============================================================================

// Small document (few keys, one nesting level) - baseline
var smallDoc = []byte(`{"name": "order-7", "total": 129.5, "paid": true, "items": [1, 2, 3]}`)

// mediumDoc builds a typical API payload: an array of records with nested
// objects, around 100KB.
func mediumDoc() []byte {
	var sb strings.Builder
	sb.WriteString(`{"records": [`)
	for i := 0; i < 500; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"id": %d, "user": {"name": "user-%d", "active": %v}, "scores": [%d, %d, %d]}`,
			i, i, i%2 == 0, i, i+1, i+2)
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

// wideArray stresses the sampling policy: one array with many scalar elements.
func wideArray(n int) []byte {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", i)
	}
	sb.WriteByte(']')
	return []byte(sb.String())
}

// damagedDoc has a single malformed token, forcing the streaming tier.
var damagedDoc = []byte(`{"a": 1,, "b": {"c": [1, 2, 3]}, "d": "text"}`)

// corruptedDoc has JSON islands in garbage, forcing fragment recovery.
var corruptedDoc = []byte(`log line one {"event": "start", "ts": 12} log line two [1, 2, 3] tail`)

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkAnalyzeSmall(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(smallDoc)
	}
}

func BenchmarkAnalyzeMedium(b *testing.B) {
	doc := mediumDoc()
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(doc)
	}
}

func BenchmarkAnalyzeMediumStructureOnly(b *testing.B) {
	doc := mediumDoc()
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(doc, jsonscope.WithStructureOnly())
	}
}

func BenchmarkStreamingTier(b *testing.B) {
	doc := mediumDoc()
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(doc, jsonscope.WithStandardSizeLimit(1))
	}
}

func BenchmarkTokenizerChunked(b *testing.B) {
	doc := mediumDoc()
	for _, chunk := range []int{64, 4096, 65536} {
		b.Run(fmt.Sprintf("chunk-%d", chunk), func(b *testing.B) {
			b.SetBytes(int64(len(doc)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				tok := jsonscope.NewTokenizer()
				for off := 0; off < len(doc); off += chunk {
					end := off + chunk
					if end > len(doc) {
						end = len(doc)
					}
					tok.Feed(doc[off:end])
				}
				tok.Finalize()
			}
		})
	}
}

func BenchmarkArraySampling(b *testing.B) {
	doc := wideArray(100000)
	b.SetBytes(int64(len(doc)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(doc, jsonscope.WithStandardSizeLimit(1))
	}
}

func BenchmarkErrorRecovery(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(damagedDoc)
	}
}

func BenchmarkFragmentRecovery(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		jsonscope.AnalyzeBytes(corruptedDoc)
	}
}
