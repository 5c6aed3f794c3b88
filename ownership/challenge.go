package ownership

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultDomainTag = "starRegistry"
	// DefaultWindowSeconds is how long a challenge stays valid after it was issued.
	DefaultWindowSeconds = 300
)

var (
	ErrMalformedChallenge = errors.New("malformed challenge")
	ErrExpiredChallenge   = errors.New("challenge expired")
	ErrFutureChallenge    = errors.New("challenge timestamp is in the future")
	ErrInvalidSignature   = errors.New("invalid signature")
)

// Challenge is the parsed form of "{address}:{epochSeconds}:{domainTag}".
type Challenge struct {
	Address   string
	Timestamp int64
	DomainTag string
}

func (c Challenge) String() string {
	return fmt.Sprintf("%s:%d:%s", c.Address, c.Timestamp, c.DomainTag)
}

// ParseChallenge splits message on ':'. Only the timestamp field is required; a
// missing or non-numeric timestamp is ErrMalformedChallenge.
func ParseChallenge(message string) (Challenge, error) {
	parts := strings.Split(message, ":")
	if len(parts) < 2 {
		return Challenge{}, fmt.Errorf("%w: no timestamp field in %q", ErrMalformedChallenge, message)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: timestamp %q is not numeric", ErrMalformedChallenge, parts[1])
	}
	c := Challenge{Address: parts[0], Timestamp: ts}
	if len(parts) > 2 {
		c.DomainTag = strings.Join(parts[2:], ":")
	}
	return c, nil
}
