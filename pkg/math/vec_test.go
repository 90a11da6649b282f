package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2AddWithWeight(t *testing.T) {
	var acc Vec2
	acc.AddWithWeight(&Vec2{2, 4}, 0.5)
	acc.AddWithWeight(&Vec2{4, 0}, 0.25)
	want := Vec2{2, 2}
	if acc != want {
		t.Errorf("accumulated %v, want %v", acc, want)
	}

	acc.Clear()
	if acc != (Vec2{}) {
		t.Errorf("Clear() left %v", acc)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{0, 3, 4}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3AddWithWeight(t *testing.T) {
	var acc Vec3
	corners := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 2}}
	for i := range corners {
		acc.AddWithWeight(&corners[i], 0.25)
	}
	want := Vec3{0.5, 0.5, 0.5}
	if acc.Distance(want) > 1e-6 {
		t.Errorf("centroid = %v, want %v", acc, want)
	}
}
