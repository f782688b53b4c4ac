package backupcodes

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCount is the baseline number of codes issued per enrollment.
	DefaultCount = 8

	// codeBytes is the entropy per code: 5 random bytes rendered as 10 hex
	// characters, 40 bits per code.
	codeBytes = 5
)

var (
	ErrInvalidCount      = errors.New("backupcodes: count must be greater than 0")
	ErrFailedToGenerate  = errors.New("backupcodes: failed to generate code")
	ErrFailedToHash      = errors.New("backupcodes: failed to hash code")
	ErrInvalidBcryptCost = errors.New("backupcodes: invalid bcrypt cost")
)

// Manager generates and verifies single-use recovery codes. Stored forms are
// bcrypt hashes, so a leaked credential store never exposes usable codes and
// the comparison cost stays tunable.
type Manager struct {
	cost int
}

// New creates a Manager with the given bcrypt cost. A cost of 0 selects
// bcrypt.DefaultCost.
func New(cost int) (*Manager, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, ErrInvalidBcryptCost
	}
	return &Manager{cost: cost}, nil
}

// Generate creates count plaintext recovery codes. Callers show these to the
// user exactly once and persist only the hashed forms.
func (m *Manager) Generate(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}

	codes := make([]string, count)
	for i := range count {
		buf := make([]byte, codeBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerate, err)
		}
		codes[i] = hex.EncodeToString(buf)
	}
	return codes, nil
}

// Hash produces the stored form of a code. The code is normalized first so
// presentation formatting never affects matchability.
func (m *Manager) Hash(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(Normalize(code)), m.cost)
	if err != nil {
		return "", errors.Join(ErrFailedToHash, err)
	}
	return string(hash), nil
}

// HashAll hashes every code in the list, preserving order.
func (m *Manager) HashAll(codes []string) ([]string, error) {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hash, err := m.Hash(code)
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}
	return hashes, nil
}

// Consume matches the candidate against the stored hash list. On a match it
// reports true and returns the list with exactly that one entry removed; codes
// are single-use. Without a match the returned list is identical to the input.
//
// The scan always visits every entry so verification work does not shrink once
// a match is found, keeping timing independent of match position.
func (m *Manager) Consume(candidate string, hashes []string) (bool, []string) {
	normalized := Normalize(candidate)

	matched := false
	remaining := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(normalized)) == nil && !matched {
			matched = true
			continue
		}
		remaining = append(remaining, hash)
	}

	if !matched {
		return false, hashes
	}
	return true, remaining
}

// Normalize trims surrounding whitespace and lowercases a code so user input
// like " 3F9A01B2CD " matches the stored form of "3f9a01b2cd".
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
