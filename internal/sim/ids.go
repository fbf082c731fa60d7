package sim

import (
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDSource hands out unique record ids. It replaces a process-wide
// counter and is owned by one simulation.
type IDSource struct {
	entropy io.Reader
	now     func() time.Time
}

// NewIDSource returns ids drawn from r. Ids from one source are strictly
// increasing.
func NewIDSource(r io.Reader) *IDSource {
	return &IDSource{
		entropy: ulid.Monotonic(r, 0),
		now:     time.Now,
	}
}

func (s *IDSource) New() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}
