package ordering_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/ordering"
	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

type fakeProjects struct {
	reordered  [][]string
	reorderErr error
}

func (f *fakeProjects) List(context.Context, bool) ([]entity.Project, error) { return nil, nil }
func (f *fakeProjects) Get(context.Context, string) (entity.Project, error) {
	return entity.Project{}, nil
}
func (f *fakeProjects) Update(context.Context, string, dto.UpdateProjectRequest) error { return nil }
func (f *fakeProjects) Reorder(_ context.Context, ids []string) error {
	f.reordered = append(f.reordered, ids)
	return f.reorderErr
}

func newProjects(ids ...string) *store.Store[entity.Project] {
	s := store.New(func(p entity.Project) string { return p.ID })
	items := make([]entity.Project, len(ids))
	for i, id := range ids {
		items[i] = entity.Project{ID: id, Order: i}
	}
	s.Replace(items)
	return s
}

func TestMove_PersisteElOrdenExacto(t *testing.T) {
	cache := newProjects("P1", "P2", "P3")
	gw := &fakeProjects{}
	sync := ordering.New(cache, gw, logger.Nop())

	got := sync.Move(context.Background(), 0, 2)

	assert.Equal(t, []string{"P2", "P3", "P1"}, got)
	assert.Equal(t, []string{"P2", "P3", "P1"}, cache.IDs())
	require.Len(t, gw.reordered, 1)
	assert.Equal(t, []string{"P2", "P3", "P1"}, gw.reordered[0], "la lista persistida coincide con el orden local")
}

func TestMove_FalloDePersistenciaNoRevierte(t *testing.T) {
	cache := newProjects("P1", "P2", "P3")
	gw := &fakeProjects{reorderErr: &domain.NetworkError{Op: "put", Err: errors.New("timeout")}}
	sync := ordering.New(cache, gw, logger.Nop())

	got := sync.Move(context.Background(), 2, 0)

	// Best-effort: el orden local se conserva aunque el backend fallara.
	assert.Equal(t, []string{"P3", "P1", "P2"}, got)
	assert.Equal(t, []string{"P3", "P1", "P2"}, cache.IDs())
}

func TestMove_IndicesInvalidosNoLlamanAlBackend(t *testing.T) {
	cache := newProjects("P1", "P2")
	gw := &fakeProjects{}
	sync := ordering.New(cache, gw, logger.Nop())

	got := sync.Move(context.Background(), 0, 5)

	assert.Equal(t, []string{"P1", "P2"}, got)
	assert.Empty(t, gw.reordered)
}
