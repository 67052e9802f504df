package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	letterChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

var (
	ErrInvalidPolicy = errors.New("at least one character type must be selected")
	ErrInvalidLength = errors.New("invalid password length")

	ErrUnknownStrategy = errors.New("unknown generation strategy")
)

// Strategy selects how characters are drawn from the selected categories.
type Strategy int

const (
	// StrategyCoverage guarantees at least one character from every selected
	// category and shuffles the result.
	StrategyCoverage Strategy = iota
	// StrategyUniform draws every character independently from the union alphabet.
	StrategyUniform
)

func (s Strategy) String() string {
	switch s {
	case StrategyCoverage:
		return "coverage"
	case StrategyUniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a strategy name to a Strategy. The empty string selects
// StrategyCoverage.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "coverage":
		return StrategyCoverage, nil
	case "uniform":
		return StrategyUniform, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Policy configures the password generator.
type Policy struct {
	UseLetters bool
	UseDigits  bool
	UseSymbols bool
	Length     int
	Strategy   Strategy
}

// DefaultPolicy returns the form defaults: 12 characters with all types enabled.
func DefaultPolicy() Policy {
	return Policy{
		UseLetters: true,
		UseDigits:  true,
		UseSymbols: true,
		Length:     12,
	}
}

// charsets returns the alphabets of the selected categories in a fixed order.
func (p Policy) charsets() []string {
	var sets []string
	if p.UseLetters {
		sets = append(sets, letterChars)
	}
	if p.UseDigits {
		sets = append(sets, digitChars)
	}
	if p.UseSymbols {
		sets = append(sets, symbolChars)
	}
	return sets
}

// Categories returns the number of selected character categories.
func (p Policy) Categories() int {
	return len(p.charsets())
}

// Alphabet returns the union alphabet implied by the selected categories.
func (p Policy) Alphabet() string {
	return strings.Join(p.charsets(), "")
}

// Validate reports whether the policy can produce a password.
func (p Policy) Validate() error {
	n := p.Categories()
	if n == 0 {
		return ErrInvalidPolicy
	}
	if p.Length <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidLength, p.Length)
	}
	if p.Strategy == StrategyCoverage && p.Length < n {
		return fmt.Errorf("%w: %d is less than the %d selected character types", ErrInvalidLength, p.Length, n)
	}
	return nil
}

// Generator produces passwords from an injected source of secure random bytes.
// It keeps no state between calls.
type Generator struct {
	src io.Reader
}

// NewGenerator creates a Generator reading from src. A nil src uses crypto/rand.
func NewGenerator(src io.Reader) *Generator {
	if src == nil {
		src = rand.Reader
	}
	return &Generator{src: src}
}

var defaultGenerator = NewGenerator(nil)

// Generate creates a cryptographically secure random password using crypto/rand.
func Generate(p Policy) (string, error) {
	return defaultGenerator.Generate(p)
}

// Generate creates a random password according to the policy.
func (g *Generator) Generate(p Policy) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	sets := p.charsets()
	pool := strings.Join(sets, "")
	result := make([]byte, 0, p.Length)

	if p.Strategy == StrategyCoverage {
		for _, charset := range sets {
			ch, err := g.randChar(charset)
			if err != nil {
				return "", err
			}
			result = append(result, ch)
		}
	}

	for len(result) < p.Length {
		ch, err := g.randChar(pool)
		if err != nil {
			return "", err
		}
		result = append(result, ch)
	}

	if p.Strategy == StrategyCoverage {
		if err := g.shuffle(result); err != nil {
			return "", err
		}
	}

	return string(result), nil
}

func (g *Generator) randChar(charset string) (byte, error) {
	i, err := g.intn(len(charset))
	if err != nil {
		return 0, err
	}
	return charset[i], nil
}

// shuffle performs a Fisher-Yates shuffle driven by the generator's source.
func (g *Generator) shuffle(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return err
		}
		data[i], data[j] = data[j], data[i]
	}
	return nil
}

// intn returns a uniform integer in [0, n). Words at or above the largest
// multiple of n below 2^32 are rejected, so no residue is favoured.
func (g *Generator) intn(n int) (int, error) {
	if n <= 0 || uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("random range out of bounds: %d", n)
	}
	const span = uint64(1) << 32
	limit := span - span%uint64(n)

	var buf [4]byte
	for {
		if _, err := io.ReadFull(g.src, buf[:]); err != nil {
			return 0, fmt.Errorf("reading random source: %w", err)
		}
		v := uint64(binary.BigEndian.Uint32(buf[:]))
		if v < limit {
			return int(v % uint64(n)), nil
		}
	}
}

// ParseLength parses a user-supplied length. Non-numeric, non-finite and
// fractional values are rejected with ErrInvalidLength.
func ParseLength(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidLength)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidLength, raw)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidLength, raw)
	}
	return int(f), nil
}
