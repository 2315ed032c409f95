package network

import (
	"context"
	"errors"
	"testing"

	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/shared"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/infrastructure/mikrotik"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRouterRepo struct {
	routers map[uuid.UUID]*network.Router
}

func newMemRouterRepo() *memRouterRepo {
	return &memRouterRepo{routers: make(map[uuid.UUID]*network.Router)}
}

func (r *memRouterRepo) FindByID(_ context.Context, id uuid.UUID) (*network.Router, error) {
	router, ok := r.routers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return router, nil
}

func (r *memRouterRepo) FindByName(_ context.Context, name string) (*network.Router, error) {
	for _, router := range r.routers {
		if router.Name == name {
			return router, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memRouterRepo) FindAll(_ context.Context, _ shared.Filter) ([]network.Router, error) {
	var out []network.Router
	for _, router := range r.routers {
		out = append(out, *router)
	}
	return out, nil
}

func (r *memRouterRepo) FindByStatus(_ context.Context, status network.RouterStatus, _ shared.Filter) ([]network.Router, error) {
	var out []network.Router
	for _, router := range r.routers {
		if router.Status == status {
			out = append(out, *router)
		}
	}
	return out, nil
}

func (r *memRouterRepo) FindActive(_ context.Context) ([]network.Router, error) {
	var out []network.Router
	for _, router := range r.routers {
		if !router.InMaintenance() {
			out = append(out, *router)
		}
	}
	return out, nil
}

func (r *memRouterRepo) Save(_ context.Context, router *network.Router) error {
	r.routers[router.ID] = router
	return nil
}

func (r *memRouterRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.routers, id)
	return nil
}

func (r *memRouterRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.routers)), nil
}

type stubReader struct {
	info mikrotik.Info
	err  error
}

func (s *stubReader) SystemInfo(_ context.Context) (mikrotik.Info, error) {
	return s.info, s.err
}

func (s *stubReader) Close() error { return nil }

type stubConnector struct {
	readers map[string]*stubReader // Keyed by host
	dialErr map[string]error
}

func (c *stubConnector) Connect(_ context.Context, router *network.Router) (InfoReader, error) {
	if err := c.dialErr[router.Host]; err != nil {
		return nil, err
	}
	return c.readers[router.Host], nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ ...shared.DomainEvent) error { return nil }

func TestRouterServiceRegister(t *testing.T) {
	repo := newMemRouterRepo()
	svc := NewService(repo, &stubConnector{}, nopPublisher{}, nil)

	router, err := svc.Register(context.Background(), "bgp-01", "10.0.0.1", 8728, "api", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bgp-01", router.Name)

	_, err = svc.Register(context.Background(), "bgp-01", "10.0.0.2", 8728, "api", "pw")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestRouterServiceRefresh(t *testing.T) {
	t.Run("reachable router records health", func(t *testing.T) {
		repo := newMemRouterRepo()
		router, err := network.NewRouter("bgp-01", "10.0.0.1", 8728, "api", "pw")
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), router))

		connector := &stubConnector{readers: map[string]*stubReader{
			"10.0.0.1": {info: mikrotik.Info{
				Identity:    "core",
				Version:     "7.15.2",
				CPULoad:     9,
				FreeMemory:  192,
				TotalMemory: 256,
			}},
		}}
		svc := NewService(repo, connector, nopPublisher{}, nil)

		refreshed, err := svc.Refresh(context.Background(), router.ID)
		require.NoError(t, err)

		assert.True(t, refreshed.IsOnline())
		assert.Equal(t, "core", refreshed.Identity)
		assert.Equal(t, "7.15.2", refreshed.OSVersion)
		assert.Equal(t, 25, refreshed.MemoryUsage)
	})

	t.Run("unreachable router records failure", func(t *testing.T) {
		repo := newMemRouterRepo()
		router, err := network.NewRouter("bgp-02", "10.0.0.2", 8728, "api", "pw")
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), router))

		connector := &stubConnector{dialErr: map[string]error{
			"10.0.0.2": errors.New("dial tcp: timeout"),
		}}
		svc := NewService(repo, connector, nopPublisher{}, nil)

		refreshed, err := svc.Refresh(context.Background(), router.ID)
		require.NoError(t, err)

		assert.False(t, refreshed.IsOnline())
		assert.Equal(t, 1, refreshed.FailureCount)
	})
}

func TestRouterServiceRefreshAll(t *testing.T) {
	repo := newMemRouterRepo()

	up, err := network.NewRouter("up", "10.0.0.1", 8728, "api", "pw")
	require.NoError(t, err)
	down, err := network.NewRouter("down", "10.0.0.2", 8728, "api", "pw")
	require.NoError(t, err)
	parked, err := network.NewRouter("parked", "10.0.0.3", 8728, "api", "pw")
	require.NoError(t, err)
	require.NoError(t, parked.EnterMaintenance())

	require.NoError(t, repo.Save(context.Background(), up))
	require.NoError(t, repo.Save(context.Background(), down))
	require.NoError(t, repo.Save(context.Background(), parked))

	connector := &stubConnector{
		readers: map[string]*stubReader{"10.0.0.1": {info: mikrotik.Info{Identity: "up"}}},
		dialErr: map[string]error{"10.0.0.2": errors.New("dial tcp: timeout")},
	}
	svc := NewService(repo, connector, nopPublisher{}, nil)

	result, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Online)
	assert.Equal(t, 1, result.Offline)
	assert.Equal(t, 1, result.Skipped)

	assert.True(t, repo.routers[up.ID].IsOnline())
	assert.False(t, repo.routers[down.ID].IsOnline())
}
