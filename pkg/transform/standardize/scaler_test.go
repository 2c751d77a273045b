package standardize

import (
	"errors"
	"math"
	"testing"

	"github.com/wdm0006/switchboard/pkg/tabular"
)

func TestScaler(t *testing.T) {
	X := tabular.RowsTable([][]float64{{1, 5}, {3, 5}})
	s := &Scaler{}
	if err := s.Fit(X, nil); err != nil {
		t.Fatal(err)
	}
	out, err := s.Transform(X)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{-1, 0}, {1, 0}}
	for i := range want {
		for j := range want[i] {
			if out.Rows()[i][j] != want[i][j] {
				t.Fatalf("cell %d,%d: want %v, got %v", i, j, want[i][j], out.Rows()[i][j])
			}
		}
	}

	if err := s.SetParams(map[string]any{"with_std": false}); err != nil {
		t.Fatal(err)
	}
	out, err = s.Transform(tabular.RowsTable([][]float64{{5, 5}}))
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows()[0][0] != 3 {
		t.Fatalf("expected centered value 3, got %v", out.Rows()[0][0])
	}
	if s.Params()["with_mean"] != true || s.Params()["with_std"] != false {
		t.Fatalf("unexpected params %v", s.Params())
	}
}

func TestScalerErrors(t *testing.T) {
	if _, err := (&Scaler{}).Transform(tabular.RowsTable([][]float64{{1}})); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if err := (&Scaler{}).SetParams(map[string]any{"with_mean": "yes"}); err == nil {
		t.Fatal("expected error for non-bool")
	}
	if err := (&Scaler{}).SetParams(map[string]any{"scale": true}); err == nil {
		t.Fatal("expected error for unknown parameter")
	}
}

func TestScalerRaggedRows(t *testing.T) {
	s := &Scaler{}
	if err := s.Fit(tabular.RowsTable([][]float64{{1, 2}, {3, 4}}), nil); err != nil {
		t.Fatal(err)
	}
	_, err := s.Transform(tabular.RowsTable([][]float64{{1, 2}, {3, 4, 5}}))
	if !errors.Is(err, tabular.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for a long row, got %v", err)
	}
	if _, err := s.Transform(tabular.RowsTable([][]float64{{1, 2}, {3}})); err == nil {
		t.Fatal("expected error for a short row")
	}
}

func TestScalerPopulationStd(t *testing.T) {
	X := tabular.RowsTable([][]float64{{2}, {4}, {4}, {4}, {5}, {5}, {7}, {9}})
	s := &Scaler{}
	if err := s.Fit(X, nil); err != nil {
		t.Fatal(err)
	}
	// mean 5, population std 2
	out, err := s.Transform(tabular.RowsTable([][]float64{{9}, {5}}))
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Rows()[0][0]; math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := out.Rows()[1][0]; math.Abs(got) > 1e-12 {
		t.Fatalf("expected 0, got %v", got)
	}

	one := &Scaler{}
	if err := one.Fit(tabular.RowsTable([][]float64{{3}}), nil); err != nil {
		t.Fatal(err)
	}
	out, err = one.Transform(tabular.RowsTable([][]float64{{4}}))
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows()[0][0] != 1 {
		t.Fatalf("single value column should only be centered, got %v", out.Rows()[0][0])
	}
}
