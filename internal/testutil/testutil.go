// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"testing"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// Center is the disk centre used by the fixtures.
var Center = chain.Point{X: 500, Y: 500}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// Arc builds a normal chain covering rays from..to inclusive, walking
// forward and wrapping, at constant radius r around Center.
func Arc(t *testing.T, id, nr, from, to int, r float64) *chain.Chain {
	t.Helper()
	return ArcFunc(t, id, nr, from, to, func(int) float64 { return r })
}

// ArcFunc is Arc with a per-ray radius.
func ArcFunc(t *testing.T, id, nr, from, to int, radius func(ray int) float64) *chain.Chain {
	t.Helper()
	c := chain.New(id, nr, chain.Normal, Center)
	var nodes []*chain.Node
	for ray := from; ; ray = chain.WrapRay(ray+1, nr) {
		nodes = append(nodes, chain.NewNode(Center, ray, nr, radius(ray), id))
		if ray == to {
			break
		}
	}
	if _, err := c.AddNodes(nodes); err != nil {
		t.Fatalf("building arc %d: %v", id, err)
	}
	return c
}

// Ring builds a complete normal chain at radius r.
func Ring(t *testing.T, id, nr int, r float64) *chain.Chain {
	t.Helper()
	return Arc(t, id, nr, 0, nr-1, r)
}

// Border builds a complete border chain at radius r.
func Border(t *testing.T, id, nr int, r float64) *chain.Chain {
	t.Helper()
	c := Ring(t, id, nr, r)
	c.Type = chain.Border
	return c
}

// ChainSummary is a comparable view of a chain.
type ChainSummary struct {
	ID   int
	Type chain.Type
	Size int
	ExtA int
	ExtB int
}

// Summarize returns a summary per chain, in input order.
func Summarize(chains []*chain.Chain) []ChainSummary {
	out := make([]ChainSummary, 0, len(chains))
	for _, c := range chains {
		s := ChainSummary{ID: c.ID, Type: c.Type, Size: c.Size()}
		if c.ExtA != nil {
			s.ExtA = c.ExtA.Ray
			s.ExtB = c.ExtB.Ray
		}
		out = append(out, s)
	}
	return out
}
