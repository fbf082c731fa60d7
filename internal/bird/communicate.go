package bird

import (
	"slices"

	"github.com/rcliao/birdswarm/internal/flock"
	"github.com/rcliao/birdswarm/internal/model"
)

// Partner is one side of a gossip exchange.
type Partner struct {
	Handle Handle
	// StartIndex is where this partner's round through the store began.
	StartIndex   int
	CurrentIndex int
	// StartTimeout delays activation when starts are staggered.
	StartTimeout       float64
	HasGivenAllInfo    bool
	HasReceivedAllInfo bool
}

// Communicate runs round-robin gossip exchanges with any number of
// partners, sending at most one record per timeout.
type Communicate struct {
	weights flock.Weights

	partners         []*Partner
	pending          []*Partner
	queue            []Handle
	nextPartnerToAsk int
	answerCountdown  float64
	idle             timer
	leaving          bool
}

func (c *Communicate) Name() string           { return StateCommunicate }
func (c *Communicate) Weights() flock.Weights { return c.weights }

func (c *Communicate) Enter(a *Agent) {
	c.partners = c.partners[:0]
	c.pending = c.pending[:0]
	c.queue = c.queue[:0]
	c.nextPartnerToAsk = 0
	c.answerCountdown = 0
	c.idle.reset()
	a.entered(c)
}

func (c *Communicate) Execute(a *Agent) {
	dt := a.world.Dt()
	c.activatePending(dt)

	if c.empty() {
		c.idle.tick(dt)
	} else {
		c.idle.reset()
	}

	c.answerCountdown -= dt
	if c.answerCountdown <= 0 {
		c.answerNext(a)
		if !a.fsm.IsInState(c) {
			return
		}
		c.askNext(a)
		if !a.fsm.IsInState(c) {
			return
		}
		c.answerCountdown = a.settings.Communication.Timeout
	}

	if c.empty() && a.Hungry() && a.Informed() {
		a.ChangeState(a.feed)
		return
	}
	if c.empty() && c.idle.elapsed(a.settings.Bird.Communicate.IdleTimeout) {
		a.ChangeState(a.explore)
	}
}

// Exit tears down every remaining partner on both sides.
func (c *Communicate) Exit(a *Agent) {
	c.abortAll(a)
}

func (c *Communicate) abortAll(a *Agent) {
	c.leaving = true
	defer func() { c.leaving = false }()
	for _, h := range c.handles() {
		c.removePartner(a, h)
	}
	c.queue = c.queue[:0]
}

func (c *Communicate) OnFoundFood(a *Agent, position model.Vec) {}

func (c *Communicate) OnFoundNeighbor(a *Agent, h Handle) {
	a.handshake(h)
}

func (c *Communicate) empty() bool {
	return len(c.partners) == 0 && len(c.pending) == 0
}

func (c *Communicate) handles() []Handle {
	hs := make([]Handle, 0, len(c.partners)+len(c.pending))
	for _, p := range c.partners {
		hs = append(hs, p.Handle)
	}
	for _, p := range c.pending {
		hs = append(hs, p.Handle)
	}
	return hs
}

func (c *Communicate) partner(h Handle) *Partner {
	for _, p := range c.partners {
		if p.Handle == h {
			return p
		}
	}
	for _, p := range c.pending {
		if p.Handle == h {
			return p
		}
	}
	return nil
}

func (c *Communicate) activatePending(dt float64) {
	kept := c.pending[:0]
	for _, p := range c.pending {
		p.StartTimeout -= dt
		if p.StartTimeout <= 0 {
			c.partners = append(c.partners, p)
			continue
		}
		kept = append(kept, p)
	}
	clear(c.pending[len(kept):])
	c.pending = kept
}

func (c *Communicate) addPartner(a *Agent, h Handle) {
	if c.partner(h) != nil {
		return
	}
	start := 0
	if n := a.knowledge.Len(); n > 0 {
		start = a.world.Rand().Intn(n)
	}
	p := &Partner{Handle: h, StartIndex: start, CurrentIndex: start}
	if a.settings.Communication.StaggerStart {
		p.StartTimeout = a.world.Rand().Float64() * 2 * a.world.Dt()
		c.pending = append(c.pending, p)
	} else {
		c.partners = append(c.partners, p)
	}
	c.idle.reset()
}

func (c *Communicate) enqueue(a *Agent, h Handle) {
	p := c.partner(h)
	if p == nil {
		return
	}
	if p.HasGivenAllInfo {
		if other, ok := a.lookup(h); ok {
			other.GivenAllInfo(a.handle)
		}
		return
	}
	if !slices.Contains(c.queue, h) {
		c.queue = append(c.queue, h)
	}
}

// answerNext sends one record to the oldest pending requester.
func (c *Communicate) answerNext(a *Agent) {
	if len(c.queue) == 0 {
		return
	}
	h := c.queue[0]
	c.queue = slices.Delete(c.queue, 0, 1)

	p := c.partner(h)
	if p == nil {
		return
	}
	other, ok := a.lookup(h)
	if !ok {
		c.removePartner(a, h)
		return
	}

	n := a.knowledge.Len()
	if n == 0 {
		c.finishGiving(a, p, other)
		return
	}
	if p.StartIndex >= n {
		p.StartIndex = 0
	}
	if p.CurrentIndex >= n {
		p.CurrentIndex = 0
	}
	r := a.knowledge.At(p.CurrentIndex)
	a.notify(Event{Kind: EventInformationSent, Partner: h, Record: r.Clone()})
	other.GatherInformation(r)

	p.CurrentIndex = (p.CurrentIndex + 1) % n
	if p.CurrentIndex == p.StartIndex {
		c.finishGiving(a, p, other)
	}
}

func (c *Communicate) finishGiving(a *Agent, p *Partner, other *Agent) {
	p.HasGivenAllInfo = true
	h := p.Handle
	other.GivenAllInfo(a.handle)
	if p := c.partner(h); p != nil && p.HasReceivedAllInfo {
		c.removePartner(a, h)
	}
}

// askNext asks the next partner that still has something to give.
func (c *Communicate) askNext(a *Agent) {
	for range len(c.partners) {
		if c.nextPartnerToAsk >= len(c.partners) {
			c.nextPartnerToAsk = 0
		}
		p := c.partners[c.nextPartnerToAsk]
		c.nextPartnerToAsk = (c.nextPartnerToAsk + 1) % len(c.partners)
		if p.HasReceivedAllInfo {
			continue
		}

		h := p.Handle
		other, ok := a.lookup(h)
		if !ok {
			c.removePartner(a, h)
			return
		}
		if other.Communicate(a.handle) {
			other.AddToInformationRecipients(a.handle)
		}
		return
	}
}

// removePartner drops h locally, then tells the other side. It reports
// whether h was a partner.
func (c *Communicate) removePartner(a *Agent, h Handle) bool {
	var p *Partner
	if i := slices.IndexFunc(c.partners, func(p *Partner) bool { return p.Handle == h }); i >= 0 {
		p = c.partners[i]
		c.partners = slices.Delete(c.partners, i, i+1)
	} else if i := slices.IndexFunc(c.pending, func(p *Partner) bool { return p.Handle == h }); i >= 0 {
		p = c.pending[i]
		c.pending = slices.Delete(c.pending, i, i+1)
	}
	if p == nil {
		return false
	}

	c.queue = slices.DeleteFunc(c.queue, func(q Handle) bool { return q == h })
	if c.nextPartnerToAsk >= len(c.partners) {
		c.nextPartnerToAsk = 0
	}
	if p.HasGivenAllInfo && p.HasReceivedAllInfo {
		a.notify(Event{Kind: EventExchangeCompleted, Partner: h})
	}

	if other, ok := a.lookup(h); ok {
		other.AbortCommunication(a.handle)
	}

	if c.empty() && !c.leaving && a.fsm.IsInState(c) {
		if a.Hungry() && a.Informed() {
			a.ChangeState(a.feed)
		} else {
			a.ChangeState(a.explore)
		}
	}
	return true
}

// Gossip entry points on the agent.

// Communicate starts or joins a gossip exchange with h. It returns false
// when the agent refuses, in which case the other side is told to abort.
func (a *Agent) Communicate(h Handle) bool {
	if a.removed || h == a.handle {
		return false
	}
	other, ok := a.lookup(h)
	if !ok {
		return false
	}
	if a.IgnoresBirds() || a.Feeding() {
		other.AbortCommunication(a.handle)
		return false
	}
	a.ChangeState(a.communicate)
	if !a.Communicating() {
		return false
	}
	a.communicate.addPartner(a, h)
	return true
}

// handshake links both agents as partners.
func (a *Agent) handshake(h Handle) {
	if !a.Communicate(h) {
		return
	}
	if other, ok := a.lookup(h); ok {
		other.Communicate(a.handle)
	}
}

// AbortCommunication removes h as a partner on both sides. It is safe to
// call for unknown or dangling handles.
func (a *Agent) AbortCommunication(h Handle) {
	a.communicate.removePartner(a, h)
}

// AddToInformationRecipients queues a request from h for the next record.
func (a *Agent) AddToInformationRecipients(h Handle) {
	if a.removed {
		return
	}
	a.communicate.enqueue(a, h)
}

// GivenAllInfo records that h has sent everything it knows.
func (a *Agent) GivenAllInfo(h Handle) {
	if a.removed {
		return
	}
	c := a.communicate
	p := c.partner(h)
	if p == nil {
		return
	}
	p.HasReceivedAllInfo = true
	if p.HasGivenAllInfo {
		c.removePartner(a, h)
	}
}

// Partners returns copies of the active and pending partner links.
func (a *Agent) Partners() []Partner {
	c := a.communicate
	out := make([]Partner, 0, len(c.partners)+len(c.pending))
	for _, p := range c.partners {
		out = append(out, *p)
	}
	for _, p := range c.pending {
		out = append(out, *p)
	}
	return out
}

func (a *Agent) lookup(h Handle) (*Agent, bool) {
	if h == NoHandle {
		return nil, false
	}
	other, ok := a.world.Lookup(h)
	if !ok || other == nil || other.removed {
		return nil, false
	}
	return other, true
}
