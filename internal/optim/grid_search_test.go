package optim

import (
	"context"
	"errors"
	"testing"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3}, {10, 20}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 6 {
		t.Errorf("expected 6 combinations, got %d", g.Size())
	}

	out, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return (p["a"]-2)*(p["a"]-2) + p["b"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Best["a"] != 2 || out.Best["b"] != 10 || out.Score != 10 {
		t.Errorf("unexpected best %v score %v", out.Best, out.Score)
	}
	if len(out.Trials) != 6 {
		t.Errorf("expected 6 trials, got %d", len(out.Trials))
	}
	if first := out.Trials[0].Params; first["a"] != 1 || first["b"] != 10 {
		t.Errorf("unexpected first trial %v", first)
	}
	if second := out.Trials[1].Params; second["a"] != 1 || second["b"] != 20 {
		t.Errorf("last parameter should vary fastest, got %v", second)
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g, _ := NewGridSearch([]string{"x"}, [][]float64{{-1, 4, 2}})
	out, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] < 0 {
			return 0, errors.New("negative")
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Best["x"] != 2 {
		t.Errorf("expected x=2, got %v", out.Best)
	}
	if out.Trials[0].Err == nil {
		t.Error("failed trial should keep its error")
	}

	_, err = g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("always")
	})
	if err == nil {
		t.Error("expected error when every trial fails")
	}
}

func TestGridSearchCanceled(t *testing.T) {
	g, _ := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) {
		calls++
		cancel()
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("expected cancel after one call, got err=%v calls=%d", err, calls)
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch(nil, nil); err == nil {
		t.Error("expected error for empty grid")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
	if _, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
