package sim

import (
	"github.com/google/uuid"

	"github.com/rcliao/birdswarm/internal/model"
)

// Food is a depletable source. Birds read its record and eat from it.
type Food struct {
	id     uuid.UUID
	record *model.InformationRecord
	amount float64

	spawnedAt    float64
	expiresAt    float64
	discoveredAt float64 // -1 until a bird first sees it
}

func (f *Food) ID() uuid.UUID            { return f.id }
func (f *Food) Amount() float64          { return f.amount }
func (f *Food) Position() model.Vec      { return f.record.Position }
func (f *Food) SpawnedAt() float64       { return f.spawnedAt }
func (f *Food) ExpiresAt() float64       { return f.expiresAt }
func (f *Food) Discovered() bool         { return f.discoveredAt >= 0 }
func (f *Food) Depleted() bool           { return f.amount <= 0 }
func (f *Food) Expired(now float64) bool { return now >= f.expiresAt }

// Information returns the claim about this source. Birds copy it.
func (f *Food) Information() *model.InformationRecord {
	return f.record
}

// Consume takes up to requested and returns what was granted.
func (f *Food) Consume(requested float64) float64 {
	if requested <= 0 || f.amount <= 0 {
		return 0
	}
	granted := min(requested, f.amount)
	f.amount -= granted
	f.record.Size = f.amount
	return granted
}
