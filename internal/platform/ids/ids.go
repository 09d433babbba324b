// Package ids generates identifiers for stored entities.
package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const companyCodeLength = 6

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a random UUID string.
func New() string {
	return uuid.NewString()
}

// NewSortable returns a ULID; values generated later sort after earlier ones.
func NewSortable() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// CompanyCode returns six uppercase hex characters taken from a fresh UUID.
func CompanyCode() string {
	return strings.ToUpper(uuid.NewString()[:companyCodeLength])
}
