package populate

import (
	"context"
	"fmt"

	"github.com/franz/narrative-db/internal/store"
)

// FemaleIDPrefix marks project ids synthesized for the female selection
const FemaleIDPrefix = "F"

// IDSequence hands out project ids of the form <prefix><NNN>. The next id
// is only consumed by Advance, so a candidate that is never inserted does
// not use up a number.
type IDSequence struct {
	prefix string
	next   int
}

// NewIDSequence returns a sequence starting just above highest
func NewIDSequence(prefix string, highest int) *IDSequence {
	return &IDSequence{prefix: prefix, next: highest + 1}
}

// ScanIDSequence starts a sequence above the largest <prefix><digits> id
// currently in the store. It must be rescanned for every run.
func ScanIDSequence(ctx context.Context, tx *store.Tx, prefix string) (*IDSequence, error) {
	highest, err := tx.MaxProjectTrackNumber(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return NewIDSequence(prefix, highest), nil
}

// Peek returns the id the next insert will use
func (s *IDSequence) Peek() string {
	return fmt.Sprintf("%s%03d", s.prefix, s.next)
}

// Advance consumes the current id
func (s *IDSequence) Advance() {
	s.next++
}
