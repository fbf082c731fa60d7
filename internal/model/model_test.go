package model

import (
	"math"
	"testing"
)

func TestRecordAgeAndClone(t *testing.T) {
	r := &InformationRecord{ID: "a", Hops: HopsUnobserved, FirstSeen: -1, Position: Vec{X: 1}}
	if r.Age(50) != 0 {
		t.Errorf("unobserved record should have no age, got %v", r.Age(50))
	}

	c := r.Clone()
	c.Hops = 0
	c.FirstSeen = 10
	c.Position.X = 9
	if r.Hops != HopsUnobserved || r.Position.X != 1 {
		t.Error("clone must not alias the original")
	}
	if c.Age(15) != 5 {
		t.Errorf("expected age 5, got %v", c.Age(15))
	}

	var nilRec *InformationRecord
	if nilRec.Clone() != nil {
		t.Error("clone of nil should be nil")
	}
}

func TestNeedsClamp(t *testing.T) {
	n := NewNeeds(NeedFood)
	if n.Get(NeedFood) != 1 {
		t.Fatalf("expected saturated need, got %v", n.Get(NeedFood))
	}
	if v := n.Add(NeedFood, 0.5); v != 1 {
		t.Errorf("expected clamp to 1, got %v", v)
	}
	if v := n.Add(NeedFood, -3); v != 0 {
		t.Errorf("expected clamp to 0, got %v", v)
	}
	n.Set(NeedInformation, math.NaN())
	if n.Get(NeedInformation) != 0 {
		t.Errorf("NaN should clamp to 0, got %v", n.Get(NeedInformation))
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: Vec{X: -10, Y: 0, Z: -10}, Max: Vec{X: 10, Y: 20, Z: 10}}
	if c := b.Center(); c != (Vec{X: 0, Y: 10, Z: 0}) {
		t.Errorf("unexpected center %v", c)
	}
	if e := b.Extents(); e != (Vec{X: 10, Y: 10, Z: 10}) {
		t.Errorf("unexpected extents %v", e)
	}
	if !b.Contains(Vec{X: 10, Y: 0}) {
		t.Error("edge point should be inside")
	}
	if b.Contains(Vec{X: 11}) {
		t.Error("point outside reported inside")
	}
	if d := b.Diagonal(); math.Abs(d-math.Sqrt(1200)) > 1e-9 {
		t.Errorf("unexpected diagonal %v", d)
	}
}
