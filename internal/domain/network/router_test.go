package network

import (
	"testing"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter(t *testing.T) {
	t.Run("creates router with valid parameters", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)

		assert.Equal(t, "bgp-01", router.Name)
		assert.Equal(t, "10.0.0.1", router.Host)
		assert.Equal(t, 8728, router.Port)
		assert.Equal(t, RouterStatusOffline, router.Status)
		assert.Equal(t, 0, router.FailureCount)
		assert.NotEqual(t, router.ID.String(), "00000000-0000-0000-0000-000000000000")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewRouter("", "10.0.0.1", 8728, "api-user", "pw")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
	})

	t.Run("rejects empty host", func(t *testing.T) {
		_, err := NewRouter("bgp-01", "  ", 8728, "api-user", "pw")
		require.Error(t, err)
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		_, err := NewRouter("bgp-01", "10.0.0.1", 0, "api-user", "pw")
		require.Error(t, err)

		_, err = NewRouter("bgp-01", "10.0.0.1", 70000, "api-user", "pw")
		require.Error(t, err)
	})

	t.Run("rejects empty username", func(t *testing.T) {
		_, err := NewRouter("bgp-01", "10.0.0.1", 8728, "", "pw")
		require.Error(t, err)
	})
}

func TestRouterRecordHealth(t *testing.T) {
	report := HealthReport{
		Identity:    "core-router",
		OSVersion:   "7.15.2",
		BoardName:   "RB5009",
		Model:       "RB5009UG+S+",
		Uptime:      "2w3d",
		CPULoad:     12,
		MemoryUsage: 25,
	}

	t.Run("brings offline router online and raises event", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)
		router.ClearDomainEvents()

		router.RecordHealth(report)

		assert.Equal(t, RouterStatusOnline, router.Status)
		assert.Equal(t, "core-router", router.Identity)
		assert.Equal(t, 12, router.CPULoad)
		assert.NotNil(t, router.LastSeenAt)
		assert.Equal(t, 0, router.FailureCount)

		events := router.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeRouterOnline, events[0].EventType())
	})

	t.Run("resets failure count", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)
		router.RecordFailure()
		router.RecordFailure()
		require.Equal(t, 2, router.FailureCount)

		router.RecordHealth(report)
		assert.Equal(t, 0, router.FailureCount)
	})

	t.Run("does not raise event when already online", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)
		router.RecordHealth(report)
		router.ClearDomainEvents()

		router.RecordHealth(report)
		assert.Empty(t, router.GetDomainEvents())
	})

	t.Run("maintenance status is preserved", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)
		require.NoError(t, router.EnterMaintenance())

		router.RecordHealth(report)
		assert.Equal(t, RouterStatusMaintenance, router.Status)
	})
}

func TestRouterRecordFailure(t *testing.T) {
	t.Run("takes online router offline and raises event", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)
		router.RecordHealth(HealthReport{Identity: "core-router"})
		router.ClearDomainEvents()

		router.RecordFailure()

		assert.Equal(t, RouterStatusOffline, router.Status)
		assert.Equal(t, 1, router.FailureCount)

		events := router.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeRouterOffline, events[0].EventType())
	})

	t.Run("repeated failures only count", func(t *testing.T) {
		router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
		require.NoError(t, err)
		router.ClearDomainEvents()

		router.RecordFailure()
		router.RecordFailure()
		router.RecordFailure()

		assert.Equal(t, 3, router.FailureCount)
		assert.Empty(t, router.GetDomainEvents()) // never was online
	})
}

func TestRouterMaintenance(t *testing.T) {
	router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
	require.NoError(t, err)

	require.NoError(t, router.EnterMaintenance())
	assert.True(t, router.InMaintenance())
	assert.Error(t, router.EnterMaintenance())

	require.NoError(t, router.ExitMaintenance())
	assert.Equal(t, RouterStatusOffline, router.Status)
	assert.Error(t, router.ExitMaintenance())
}

func TestRouterUpdateConnection(t *testing.T) {
	router, err := NewRouter("bgp-01", "10.0.0.1", 8728, "api-user", "pw")
	require.NoError(t, err)

	t.Run("updates all fields", func(t *testing.T) {
		require.NoError(t, router.UpdateConnection("10.0.0.2", 8729, "ops", "newpw"))
		assert.Equal(t, "10.0.0.2", router.Host)
		assert.Equal(t, 8729, router.Port)
		assert.Equal(t, "ops", router.Username)
		assert.Equal(t, "newpw", router.Password)
	})

	t.Run("empty password keeps current secret", func(t *testing.T) {
		require.NoError(t, router.UpdateConnection("10.0.0.3", 8728, "ops", ""))
		assert.Equal(t, "newpw", router.Password)
	})

	t.Run("rejects invalid host", func(t *testing.T) {
		assert.Error(t, router.UpdateConnection("", 8728, "ops", "pw"))
	})
}
