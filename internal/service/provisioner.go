package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
	"orggov-backend/internal/security"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	usernameSuffixDigits = 4
	maxUsernameLength    = 60
	defaultUsernameTries = 5
)

// Provisioner creates login accounts with generated credentials.
type Provisioner struct {
	tries int
	// suffix returns the random disambiguator appended to usernames
	suffix func() (string, error)
}

func NewProvisioner() *Provisioner {
	return &Provisioner{
		tries: defaultUsernameTries,
		suffix: func() (string, error) {
			return security.RandomDigits(usernameSuffixDigits)
		},
	}
}

// Provision creates an account for the person and returns the cleartext
// credentials once. A username collision is retried with a new suffix.
func (p *Provisioner) Provision(ctx context.Context, accounts repository.AccountRepository, fullName, email string, role domain.Role) (*domain.Credentials, error) {
	password, err := security.RandomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	base := BaseUsername(fullName)
	for attempt := 1; attempt <= p.tries; attempt++ {
		suffix, err := p.suffix()
		if err != nil {
			return nil, err
		}
		account := &domain.Account{
			Username:     base + "_" + suffix,
			PasswordHash: hash,
			Email:        domain.NormalizeEmail(email),
			FullName:     domain.NormalizePersonName(fullName),
			Role:         role,
		}

		err = accounts.Create(ctx, account)
		if errors.Is(err, repository.ErrDuplicateUsername) {
			logger.Warn("Generated username collided, retrying", "username", account.Username, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s account: %w", role, err)
		}

		return &domain.Credentials{
			AccountID:   account.ID,
			Username:    account.Username,
			RawPassword: password,
			Email:       account.Email,
			FullName:    account.FullName,
			Role:        role,
		}, nil
	}
	return nil, fmt.Errorf("could not generate a unique username for %q after %d attempts", fullName, p.tries)
}

// BaseUsername lower-cases the name, strips accents, joins words with
// underscores and drops everything that is not an ASCII letter or digit.
func BaseUsername(fullName string) string {
	folded, _, err := transform.String(stripMarks(), strings.ToLower(fullName))
	if err != nil {
		folded = strings.ToLower(fullName)
	}
	words := strings.Fields(folded)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, w)
		if w != "" {
			kept = append(kept, w)
		}
	}
	base := strings.Join(kept, "_")
	if base == "" {
		base = "user"
	}
	if len(base) > maxUsernameLength {
		base = strings.TrimRight(base[:maxUsernameLength], "_")
	}
	return base
}

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
