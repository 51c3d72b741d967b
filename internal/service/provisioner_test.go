package service

import (
	"context"
	"testing"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository/memory"
	"orggov-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseUsername(t *testing.T) {
	cases := map[string]string{
		"Juan dela Cruz":        "juan_dela_cruz",
		"  José   Peña-Ramos  ": "jose_penaramos",
		"Ma. Cristina O'Neil":   "ma_cristina_oneil",
		"!!! ???":               "user",
		"":                      "user",
	}
	for in, want := range cases {
		assert.Equal(t, want, BaseUsername(in), "input %q", in)
	}
}

func sequence(values ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}
}

func TestProvision(t *testing.T) {
	ctx := context.Background()

	t.Run("Retries on username collision", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.AddAccount(ctx, &domain.Account{Username: "juan_dela_cruz_0001", Email: "old@school.edu"}))

		p := &Provisioner{tries: 3, suffix: sequence("0001", "0002")}
		creds, err := p.Provision(ctx, store.Repos().Accounts, "Juan dela Cruz", " Juan@School.edu ", domain.RoleOrgPresident)
		require.NoError(t, err)
		assert.Equal(t, "juan_dela_cruz_0002", creds.Username)
		assert.Equal(t, "juan@school.edu", creds.Email)
		assert.Equal(t, "JUAN DELA CRUZ", creds.FullName)
		assert.Len(t, creds.RawPassword, security.GeneratedPasswordLength)

		stored, err := store.Repos().Accounts.GetByUsername(ctx, creds.Username)
		require.NoError(t, err)
		assert.True(t, security.CheckPassword(stored.PasswordHash, creds.RawPassword))
		assert.Equal(t, domain.RoleOrgPresident, stored.Role)
	})

	t.Run("Gives up after the configured attempts", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.AddAccount(ctx, &domain.Account{Username: "juan_dela_cruz_0001", Email: "old@school.edu"}))

		p := &Provisioner{tries: 3, suffix: sequence("0001")}
		_, err := p.Provision(ctx, store.Repos().Accounts, "Juan dela Cruz", "juan@school.edu", domain.RoleOrgPresident)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, 1, store.CountAccounts())
	})

	t.Run("Email conflict is not retried", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.AddAccount(ctx, &domain.Account{Username: "someone", Email: "juan@school.edu"}))

		_, err := NewProvisioner().Provision(ctx, store.Repos().Accounts, "Juan dela Cruz", "juan@school.edu", domain.RoleOrgAdviser)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
}
