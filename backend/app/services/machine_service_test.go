package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/backend/app/models"
	"mirage/backend/app/repo"
)

func newMachineFixture(t *testing.T, matchBy string) (*MachineService, *repo.MachineRepository) {
	t.Helper()
	gdb := newTestDB(t)
	machines := repo.NewMachineRepository(gdb)
	history := repo.NewHistoryRepository(gdb)
	return NewMachineService(machines, history, matchBy, zerolog.Nop()), machines
}

func TestResolveCreatesUnknownMachine(t *testing.T) {
	svc, machines := newMachineFixture(t, "")

	m, err := svc.Resolve(models.Machine{Name: "ws-9", FQDN: "ws-9.local"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, models.UpDownUp, m.StatusUp)
	assert.Equal(t, models.StatusActive, m.Status)

	stored, err := machines.FindByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "ws-9", stored.Name)
}

func TestResolveByID(t *testing.T) {
	svc, machines := newMachineFixture(t, "")
	require.NoError(t, machines.Create(&models.Machine{ID: "known-id", Name: "ws-1"}))

	m, err := svc.Resolve(models.Machine{ID: "known-id", Name: "something-else"})
	require.NoError(t, err)
	assert.Equal(t, "ws-1", m.Name, "id match wins over reported fields")
}

func TestResolveByStrategy(t *testing.T) {
	cases := []struct {
		strategy string
		existing models.Machine
		reported models.Machine
	}{
		{"name", models.Machine{ID: "a", Name: "WS-1"}, models.Machine{Name: "ws-1"}},
		{"fqdn", models.Machine{ID: "b", Name: "x", FQDN: "WS-1.corp.local"}, models.Machine{Name: "y", FQDN: "ws-1.corp.local"}},
		{"host", models.Machine{ID: "c", Name: "x", Host: "HOST-1"}, models.Machine{Name: "y", Host: "host-1"}},
		{"resolvedhost", models.Machine{ID: "d", Name: "x", ResolvedHost: "RH-1"}, models.Machine{Name: "y", ResolvedHost: "rh-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			svc, machines := newMachineFixture(t, tc.strategy)
			require.NoError(t, machines.Create(&tc.existing))

			m, err := svc.Resolve(tc.reported)
			require.NoError(t, err)
			assert.Equal(t, tc.existing.ID, m.ID)
		})
	}
}

func TestResolveUnknownIDFallsBackToName(t *testing.T) {
	svc, machines := newMachineFixture(t, "name")
	require.NoError(t, machines.Create(&models.Machine{ID: "real-id", Name: "ws-1"}))

	m, err := svc.Resolve(models.Machine{ID: "stale-id", Name: "ws-1"})
	require.NoError(t, err)
	assert.Equal(t, "real-id", m.ID)
}
