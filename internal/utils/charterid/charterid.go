package charterid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the public identifiers handed out by the charter API.
const (
	PrefixDraft        = "drf_"
	PrefixMedia        = "med_"
	PrefixCharter      = "chr_"
	PrefixBoat         = "boat_"
	PrefixCharterMedia = "cm_"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

func newID(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + strings.ToLower(id.String())
}

// NewDraft returns a drf_* ULID string.
func NewDraft() string { return newID(PrefixDraft) }

// NewMedia returns a med_* ULID string.
func NewMedia() string { return newID(PrefixMedia) }

// NewCharter returns a chr_* ULID string.
func NewCharter() string { return newID(PrefixCharter) }

// NewBoat returns a boat_* ULID string.
func NewBoat() string { return newID(PrefixBoat) }

// NewCharterMedia returns a cm_* ULID string.
func NewCharterMedia() string { return newID(PrefixCharterMedia) }

// HasPrefix reports whether the value carries the given id prefix and parses
// as a ULID once the prefix is stripped.
func HasPrefix(value, prefix string) bool {
	if !strings.HasPrefix(value, prefix) {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(strings.TrimPrefix(value, prefix)))
	return err == nil
}
