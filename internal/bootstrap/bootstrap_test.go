package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"orggov-backend/internal/config"
	"orggov-backend/internal/domain"
	"orggov-backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
colleges:
  - code: ccs
    name: College of Computer Studies
courses:
  - college: CCS
    code: bscs
    name: BS Computer Science
terms:
  - school_year: "2026-2027"
    semester: 1st Semester
    start_date: "2026-08-10"
    end_date: "2026-12-18"
    active: true
accounts:
  - username: osas.head
    password: change-me-now
    email: osas@school.edu
    full_name: OSAS Head
    role: osas
`

func TestOpenStore_MemoryWithSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	cfg := &config.Config{}
	cfg.Database.Driver = "memory"
	cfg.Database.SeedFile = path

	ctx := context.Background()
	store, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.Nil(t, store.DB)

	term, err := store.Repos().Terms.CurrentActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, term)
	assert.Equal(t, "2026-2027", term.SchoolYear)

	osas, err := store.Repos().Accounts.ListByRole(ctx, domain.RoleOSAS)
	require.NoError(t, err)
	assert.Len(t, osas, 1)
}

func TestOpenStore_BadSeed(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "memory"
	cfg.Database.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSenders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notify.Channels = []string{"smtp", " SendGrid "}
	cfg.SMTP.Host = "localhost"
	cfg.SMTP.Port = 1025
	cfg.SendGrid.APIKey = "SG.test"
	cfg.SendGrid.FromEmail = "noreply@school.edu"

	senders, err := Senders(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, senders, 2)
	assert.Equal(t, domain.ChannelSMTP, senders[0].Channel())
	assert.IsType(t, &notify.SendGridSender{}, senders[1])

	cfg.Notify.Channels = []string{"pigeon"}
	_, err = Senders(context.Background(), cfg)
	assert.Error(t, err)
}
