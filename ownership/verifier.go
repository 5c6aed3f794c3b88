package ownership

import (
	"errors"
	"fmt"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
	"github.com/mezonai/starledger/sigverify"
	"github.com/mezonai/starledger/utils"
)

// Appender is the serialized append path of the block store.
type Appender interface {
	Append(b *block.Block) (*block.Block, error)
}

type Option func(*Verifier)

func WithDomainTag(tag string) Option {
	return func(v *Verifier) {
		if tag != "" {
			v.domainTag = tag
		}
	}
}

func WithWindow(window time.Duration) Option {
	return func(v *Verifier) {
		if window > 0 {
			v.windowSeconds = int64(window / time.Second)
		}
	}
}

func WithClock(clock utils.Clock) Option {
	return func(v *Verifier) {
		v.clock = clock
	}
}

// Verifier issues ownership challenges and admits star blocks whose challenge is
// still inside its validity window and carries a valid signature.
type Verifier struct {
	store         Appender
	factory       *block.Factory
	signatures    sigverify.SignatureVerifier
	domainTag     string
	windowSeconds int64
	clock         utils.Clock
}

func NewVerifier(store Appender, factory *block.Factory, signatures sigverify.SignatureVerifier, opts ...Option) *Verifier {
	v := &Verifier{
		store:         store,
		factory:       factory,
		signatures:    signatures,
		domainTag:     DefaultDomainTag,
		windowSeconds: DefaultWindowSeconds,
		clock:         utils.SystemClock,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) DomainTag() string {
	return v.domainTag
}

func (v *Verifier) Window() time.Duration {
	return time.Duration(v.windowSeconds) * time.Second
}

// RequestChallenge returns the message address has to sign.
func (v *Verifier) RequestChallenge(address string) string {
	c := Challenge{
		Address:   address,
		Timestamp: utils.UnixSeconds(v.clock()),
		DomainTag: v.domainTag,
	}
	monitoring.IncreaseChallengeCount()
	logx.Info("OWNERSHIP", fmt.Sprintf("Issued challenge | address=%s | timestamp=%d", address, c.Timestamp))
	return c.String()
}

// Submit checks the challenge and the signature, then appends a block owned by
// address. The returned block is sealed and already committed to the chain.
func (v *Verifier) Submit(address, message, signature string, star block.Star) (*block.Block, error) {
	if err := v.CheckChallenge(message); err != nil {
		v.reject(address, err)
		return nil, err
	}
	if !v.signatures.Verify(message, address, signature) {
		err := fmt.Errorf("%w: message not signed by %s", ErrInvalidSignature, address)
		v.reject(address, err)
		return nil, err
	}

	unsealed, err := v.factory.Create(block.StarRecord{Owner: address, Star: star})
	if err != nil {
		return nil, logx.Errorf("create star block for %s: %w", address, err)
	}
	sealed, err := v.store.Append(unsealed)
	if err != nil {
		return nil, fmt.Errorf("append star block for %s: %w", address, err)
	}

	logx.Info("OWNERSHIP", fmt.Sprintf("Star registered | owner=%s | height=%d | hash=%s", address, sealed.Height, utils.ShortenLog(sealed.Hash)))
	return sealed, nil
}

// CheckChallenge validates the timestamp embedded in message against the window.
// A challenge exactly window seconds old is still accepted.
func (v *Verifier) CheckChallenge(message string) error {
	c, err := ParseChallenge(message)
	if err != nil {
		return err
	}
	// compare against now before subtracting; window arithmetic on Timestamp overflows near MinInt64
	now := utils.UnixSeconds(v.clock())
	if c.Timestamp > now {
		return fmt.Errorf("%w: issued %ds ahead of now", ErrFutureChallenge, c.Timestamp-now)
	}
	if c.Timestamp < now-v.windowSeconds {
		return fmt.Errorf("%w: issued at %d, window is %ds before %d", ErrExpiredChallenge, c.Timestamp, v.windowSeconds, now)
	}
	return nil
}

func (v *Verifier) reject(address string, err error) {
	monitoring.RecordRejectedSubmission(RejectionReason(err))
	logx.Warn("OWNERSHIP", fmt.Sprintf("Submission rejected | address=%s | reason=%v", address, err))
}

// RejectionReason classifies an admission error for metrics.
func RejectionReason(err error) monitoring.SubmissionRejectedReason {
	switch {
	case errors.Is(err, ErrMalformedChallenge):
		return monitoring.SubmissionMalformedChallenge
	case errors.Is(err, ErrExpiredChallenge):
		return monitoring.SubmissionExpiredChallenge
	case errors.Is(err, ErrFutureChallenge):
		return monitoring.SubmissionFutureChallenge
	case errors.Is(err, ErrInvalidSignature):
		return monitoring.SubmissionInvalidSignature
	default:
		return monitoring.SubmissionRejectedUnknown
	}
}
