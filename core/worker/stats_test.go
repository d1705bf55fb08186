package worker

import (
	"math"
	"testing"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.MeanMs != 0 || s.P50Ms != 0 || s.P95Ms != 0 {
		t.Errorf("empty input must yield zero stats: %#v", s)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40})
	if math.Abs(s.MeanMs-25) > 1e-9 {
		t.Errorf("mean: got %v want 25", s.MeanMs)
	}
	if s.P50Ms < 10 || s.P50Ms > 30 {
		t.Errorf("p50 out of range: %v", s.P50Ms)
	}
	if s.P95Ms < s.P50Ms || s.P95Ms > 40 {
		t.Errorf("p95 out of range: %v", s.P95Ms)
	}
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	in := []float64{30, 10, 20}
	Summarize(in)
	if in[0] != 30 || in[1] != 10 || in[2] != 20 {
		t.Errorf("input was reordered: %v", in)
	}
}
