package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

var center = chain.Point{X: 300, Y: 300}

func arc(t *testing.T, id, from, to int, radial func(ray int) float64) *chain.Chain {
	t.Helper()
	c := chain.New(id, 360, chain.Normal, center)
	var nodes []*chain.Node
	for ray := from; ; ray = chain.WrapRay(ray+1, 360) {
		nodes = append(nodes, chain.NewNode(center, ray, 360, radial(ray), id))
		if ray == to {
			break
		}
	}
	_, err := c.AddNodes(nodes)
	require.NoError(t, err)
	return c
}

func constant(r float64) func(int) float64 {
	return func(int) float64 { return r }
}

func TestNodesWithoutSupportInterpolatesRadius(t *testing.T) {
	j := arc(t, 0, 0, 10, constant(100))
	k := arc(t, 1, 14, 20, constant(140))

	got := Nodes(nil, j.ExtB, k.ExtA, chain.EndpointB, j, nil)
	require.Len(t, got, 3)
	for i, n := range got {
		assert.Equal(t, 11+i, n.Ray)
		assert.InDelta(t, 100+10*float64(i+1), n.Radial, 1e-9)
		assert.Equal(t, j.ID, n.ChainID)
	}
	assert.Equal(t, 10, j.ExtB.Ray, "target must not be modified")
}

func TestNodesFollowSupportShape(t *testing.T) {
	support := arc(t, 2, 0, 359, func(ray int) float64 { return 50 + float64(ray) })
	j := arc(t, 0, 0, 10, func(ray int) float64 { return 70 + float64(ray) })
	k := arc(t, 1, 16, 30, func(ray int) float64 { return 70 + float64(ray) })

	got := Nodes(support, j.ExtB, k.ExtA, chain.EndpointB, j, nil)
	require.Len(t, got, 5)
	for _, n := range got {
		assert.InDelta(t, 70+float64(n.Ray), n.Radial, 1e-9)
	}
}

func TestNodesWalkBackwardFromEndpointA(t *testing.T) {
	support := arc(t, 2, 0, 359, constant(50))
	j := arc(t, 0, 20, 30, constant(100))
	k := arc(t, 1, 5, 16, constant(80))

	got := Nodes(support, j.ExtA, k.ExtB, chain.EndpointA, j, nil)
	require.Len(t, got, 3)
	assert.Equal(t, []int{19, 18, 17}, []int{got[0].Ray, got[1].Ray, got[2].Ray})
	assert.InDelta(t, 95.0, got[0].Radial, 1e-9)
	assert.InDelta(t, 85.0, got[2].Radial, 1e-9)
}

func TestNodesBetweenTwoSupports(t *testing.T) {
	inner := arc(t, 2, 0, 359, constant(50))
	outer := arc(t, 3, 0, 359, func(ray int) float64 { return 150 + float64(ray) })
	j := arc(t, 0, 0, 10, func(ray int) float64 { return 100 + float64(ray)/2 })
	k := arc(t, 1, 12, 20, func(ray int) float64 { return 100 + float64(ray)/2 })

	got := Nodes(inner, j.ExtB, k.ExtA, chain.EndpointB, j, outer)
	require.Len(t, got, 1)
	assert.Equal(t, 11, got[0].Ray)
	assert.InDelta(t, 50+0.5*(161-50), got[0].Radial, 1e-9)
}

func TestNodesAdjacentEndpoints(t *testing.T) {
	j := arc(t, 0, 0, 10, constant(100))
	k := arc(t, 1, 11, 20, constant(100))
	assert.Empty(t, Nodes(nil, j.ExtB, k.ExtA, chain.EndpointB, j, nil))
}
