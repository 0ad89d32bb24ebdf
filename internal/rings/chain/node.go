// Package chain models growth-ring contour fragments sampled on a fixed set
// of rays around a disk center.
package chain

import (
	"fmt"
	"math"
)

// Point is a pixel position. Y grows downward as in image coordinates.
type Point struct {
	X, Y float64
}

// Node is one boundary sample on ray Ray at Radial pixels from the center.
// Position and ray are fixed once created; ChainID follows ownership.
type Node struct {
	X, Y    float64
	Ray     int     // ray index in [0, Nr)
	Angle   float64 // degrees, Ray*360/Nr
	Radial  float64 // distance from the center
	ChainID int
}

// NewNode places a node at radial distance r on the given ray.
func NewNode(center Point, ray, nr int, r float64, chainID int) *Node {
	angle := RayAngle(ray, nr)
	rad := angle * math.Pi / 180
	return &Node{
		X:       center.X + r*math.Sin(rad),
		Y:       center.Y + r*math.Cos(rad),
		Ray:     ray,
		Angle:   angle,
		Radial:  r,
		ChainID: chainID,
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("node(ray=%d r=%.2f chain=%d)", n.Ray, n.Radial, n.ChainID)
}

// RayAngle converts a ray index to degrees.
func RayAngle(ray, nr int) float64 {
	return float64(ray) * 360 / float64(nr)
}

// WrapRay maps any integer onto [0, nr).
func WrapRay(ray, nr int) int {
	ray %= nr
	if ray < 0 {
		ray += nr
	}
	return ray
}

// RaySteps is the number of rays walked going forward from a to b.
func RaySteps(a, b, nr int) int {
	return WrapRay(b-a, nr)
}

// RayGap is the shorter circular distance between two rays, in rays.
func RayGap(a, b, nr int) int {
	d := RaySteps(a, b, nr)
	if nr-d < d {
		return nr - d
	}
	return d
}

// EuclideanDistance between two nodes in pixels.
func EuclideanDistance(a, b *Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
