package sim

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rcliao/birdswarm/internal/bird"
	"github.com/rcliao/birdswarm/internal/config"
	"github.com/rcliao/birdswarm/internal/model"
)

// Perception turns distances into the enter and exit events birds react
// to. Every event is delivered once per actual enter or exit.
type Perception struct {
	ranges config.Perception
	bounds model.Bounds
	views  map[bird.Handle]*view
}

// view is what one bird perceived on the previous tick.
type view struct {
	visible  []bird.Handle
	near     []bird.Handle
	contact  []bird.Handle
	sighted  map[*Food]bool
	touching map[*Food]bool
	outside  bool
}

func NewPerception(ranges config.Perception, bounds model.Bounds) *Perception {
	return &Perception{
		ranges: ranges,
		bounds: bounds,
		views:  make(map[bird.Handle]*view),
	}
}

// Step delivers the differences to the previous tick to every live agent
// in registry order.
func (p *Perception) Step(agents []*bird.Agent, foods []*Food) {
	for _, a := range agents {
		if a == nil || a.Removed() {
			continue
		}
		prev, ok := p.views[a.Handle()]
		if !ok {
			prev = &view{}
		}
		next := p.look(a, agents, foods)
		p.deliver(a, prev, next, !ok)
		p.views[a.Handle()] = next
	}
	for h := range p.views {
		if int(h) >= len(agents) || agents[h] == nil || agents[h].Removed() {
			delete(p.views, h)
		}
	}
}

func (p *Perception) look(a *bird.Agent, agents []*bird.Agent, foods []*Food) *view {
	v := &view{
		sighted:  make(map[*Food]bool),
		touching: make(map[*Food]bool),
		outside:  !p.bounds.Contains(a.Position()),
	}
	pos := a.Position()
	for _, b := range agents {
		if b == nil || b == a || b.Removed() {
			continue
		}
		d := model.Distance(pos, b.Position())
		if d <= p.ranges.VisibleRange {
			v.visible = append(v.visible, b.Handle())
		}
		if d <= p.ranges.NearRange {
			v.near = append(v.near, b.Handle())
		}
		if d <= p.ranges.ContactRange {
			v.contact = append(v.contact, b.Handle())
		}
	}
	for _, f := range foods {
		if f.Depleted() {
			continue
		}
		d := model.Distance(pos, f.Position())
		if d <= p.ranges.VisibleRange {
			v.sighted[f] = true
		}
		if d <= p.ranges.ContactRange {
			v.touching[f] = true
		}
	}
	return v
}

func (p *Perception) deliver(a *bird.Agent, prev, next *view, first bool) {
	if first || prev.outside != next.outside {
		a.SetOutsideBounds(next.outside)
	}

	lost, found := diff(prev.visible, next.visible)
	for _, h := range lost {
		a.OnNeighborLost(h)
	}
	for _, h := range found {
		a.OnNeighborSighted(h)
	}
	lost, found = diff(prev.near, next.near)
	for _, h := range lost {
		a.OnNearNeighborLost(h)
	}
	for _, h := range found {
		a.OnNearNeighborSighted(h)
	}

	for _, f := range enteredFood(next.sighted, prev.sighted) {
		a.OnResourceSighted(f)
	}
	for _, f := range enteredFood(next.touching, prev.touching) {
		a.OnResourceTouched(f)
	}

	lost, found = diff(prev.contact, next.contact)
	for _, h := range lost {
		a.OnNeighborContactLost(h)
	}
	for _, h := range found {
		a.OnNeighborContact(h)
	}
}

// diff returns the handles only in prev and the handles only in next.
// Both inputs are in registry order and so are the results.
func diff(prev, next []bird.Handle) (lost, found []bird.Handle) {
	for _, h := range prev {
		if !slices.Contains(next, h) {
			lost = append(lost, h)
		}
	}
	for _, h := range next {
		if !slices.Contains(prev, h) {
			found = append(found, h)
		}
	}
	return lost, found
}

// enteredFood returns the food in next but not in prev, ordered by spawn
// time so delivery does not depend on map iteration.
func enteredFood(next, prev map[*Food]bool) []*Food {
	entered := make([]*Food, 0, len(next))
	for f := range next {
		if !prev[f] {
			entered = append(entered, f)
		}
	}
	slices.SortFunc(entered, func(a, b *Food) int {
		return cmp.Or(
			cmp.Compare(a.spawnedAt, b.spawnedAt),
			strings.Compare(a.record.ID, b.record.ID),
		)
	})
	return entered
}
