package reference

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sqids/sqids-go"
)

// ErrSpaceExhausted is returned when every attempted reference collided
// with an existing booking.
var ErrSpaceExhausted = errors.New("reference space exhausted, all attempts collided")

// ExistsChecker answers whether a reference is already taken.
type ExistsChecker interface {
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// Generator issues short alphanumeric booking references. Each reference
// encodes three random numbers through sqids, so codes look opaque and
// carry no ordering information. Randomness comes from crypto/rand; a
// math/rand stream seeded at startup would make future references
// predictable from observed ones.
type Generator struct {
	sqids    *sqids.Sqids
	store    ExistsChecker
	attempts int
	log      zerolog.Logger
}

func NewGenerator(alphabet string, minLength int, attempts int, store ExistsChecker, logger *zerolog.Logger) (*Generator, error) {
	s, err := sqids.New(sqids.Options{
		Alphabet:  alphabet,
		MinLength: uint8(minLength),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build sqids encoder: %w", err)
	}
	if attempts <= 0 {
		attempts = 1
	}
	return &Generator{
		sqids:    s,
		store:    store,
		attempts: attempts,
		log:      logger.With().Str("component", "reference").Logger(),
	}, nil
}

// NewReference draws random numbers, encodes them and redraws on collision,
// up to the configured attempt bound.
func (g *Generator) NewReference(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= g.attempts; attempt++ {
		numbers, err := randomNumbers(3)
		if err != nil {
			return "", fmt.Errorf("failed to draw random numbers: %w", err)
		}

		code, err := g.sqids.Encode(numbers)
		if err != nil {
			return "", fmt.Errorf("failed to encode reference: %w", err)
		}

		exists, err := g.store.ReferenceExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}

		g.log.Warn().Int("attempt", attempt).Msg("reference collision, redrawing")
	}
	return "", ErrSpaceExhausted
}

func randomNumbers(count int) ([]uint64, error) {
	buf := make([]byte, 4*count)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	numbers := make([]uint64, count)
	for i := range numbers {
		// 31-bit draws keep the encoded code short while leaving ~2^93 of
		// combined space across the three numbers.
		numbers[i] = uint64(binary.BigEndian.Uint32(buf[i*4:]) >> 1)
	}
	return numbers, nil
}
