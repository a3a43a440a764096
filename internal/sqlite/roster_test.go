package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestRosterRepository_Settings(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewRosterRepository(db)

	_, err := repo.GetSettings(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	settings := roster.DefaultSettings()
	settings.DefaultTurnMinutes = 45
	settings.Theme = roster.ThemeDark
	require.NoError(t, repo.SaveSettings(ctx, settings))

	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, settings, *got)

	settings.CountDown = false
	require.NoError(t, repo.SaveSettings(ctx, settings))
	got, err = repo.GetSettings(ctx)
	require.NoError(t, err)
	require.False(t, got.CountDown)
}

func TestRosterRepository_CorruptSettings(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewRosterRepository(db)

	_, err := db.Exec("INSERT INTO settings (id, data) VALUES (1, '{not json')")
	require.NoError(t, err)

	_, err = repo.GetSettings(ctx)
	require.ErrorIs(t, err, repository.ErrCorrupt)
}

func TestRosterRepository_People(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewRosterRepository(db)

	alice := &roster.Person{ID: "p1", Name: "Alice", DefaultTurnSeconds: 1800}
	bob := &roster.Person{ID: "p2", Name: "Bob", DefaultTurnSeconds: 600, HasPriority: true}
	require.NoError(t, repo.CreatePerson(ctx, alice))
	require.NoError(t, repo.CreatePerson(ctx, bob))
	require.ErrorIs(t, repo.CreatePerson(ctx, alice), repository.ErrConflict)

	people, err := repo.ListPeople(ctx)
	require.NoError(t, err)
	require.Equal(t, []roster.Person{*alice, *bob}, people)

	alice.TotalUsageSeconds = 95
	alice.DefaultTurnSeconds = 1200
	require.NoError(t, repo.UpdatePerson(ctx, alice))
	got, err := repo.GetPerson(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, *alice, *got)

	require.NoError(t, repo.ResetUsage(ctx))
	got, err = repo.GetPerson(ctx, "p1")
	require.NoError(t, err)
	require.Zero(t, got.TotalUsageSeconds)

	require.NoError(t, repo.DeletePerson(ctx, "p1"))
	_, err = repo.GetPerson(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.DeletePerson(ctx, "p1"), repository.ErrNotFound)
	require.ErrorIs(t, repo.UpdatePerson(ctx, alice), repository.ErrNotFound)
}

func TestRosterRepository_Devices(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewRosterRepository(db)

	devices, err := repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Empty(t, devices)

	require.NoError(t, repo.CreateDevice(ctx, &roster.Device{ID: "d1", Name: "Living room TV"}))
	require.NoError(t, repo.CreateDevice(ctx, &roster.Device{ID: "d2", Name: "Tablet"}))

	devices, err = repo.ListDevices(ctx)
	require.NoError(t, err)
	require.Equal(t, []roster.Device{{ID: "d1", Name: "Living room TV"}, {ID: "d2", Name: "Tablet"}}, devices)

	require.NoError(t, repo.DeleteDevice(ctx, "d1"))
	require.ErrorIs(t, repo.DeleteDevice(ctx, "d1"), repository.ErrNotFound)
}
