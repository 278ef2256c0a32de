package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/prospect-board/internal/application/store"
)

type item struct {
	ID   string
	Name string
}

func newStore(ids ...string) *store.Store[item] {
	s := store.New(func(it item) string { return it.ID })
	items := make([]item, len(ids))
	for i, id := range ids {
		items[i] = item{ID: id}
	}
	s.Replace(items)
	return s
}

func TestStore_GetYUpdate(t *testing.T) {
	s := newStore("a", "b")

	got, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	ok = s.Update("b", func(it *item) { it.Name = "beta" })
	require.True(t, ok)
	got, _ = s.Get("b")
	assert.Equal(t, "beta", got.Name)

	// Update sobre una clave ausente no toca nada y lo reporta.
	assert.False(t, s.Update("zz", func(it *item) { it.Name = "x" }))
}

func TestStore_UpsertYRemove(t *testing.T) {
	s := newStore("a")

	s.Upsert(item{ID: "b"})
	assert.Equal(t, 2, s.Len())

	s.Upsert(item{ID: "a", Name: "alfa"})
	assert.Equal(t, 2, s.Len(), "upsert de clave existente no duplica")
	got, _ := s.Get("a")
	assert.Equal(t, "alfa", got.Name)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStore_MoveSemantica(t *testing.T) {
	// Mover P1 al índice 2: [P1,P2,P3] -> [P2,P3,P1].
	s := newStore("P1", "P2", "P3")
	require.True(t, s.Move(0, 2))
	assert.Equal(t, []string{"P2", "P3", "P1"}, s.IDs())

	// Y de vuelta al frente.
	require.True(t, s.Move(2, 0))
	assert.Equal(t, []string{"P1", "P2", "P3"}, s.IDs())

	// Mover al medio desplaza los intermedios.
	require.True(t, s.Move(0, 1))
	assert.Equal(t, []string{"P2", "P1", "P3"}, s.IDs())
}

func TestStore_MoveFueraDeRango(t *testing.T) {
	s := newStore("P1", "P2")
	assert.False(t, s.Move(-1, 0))
	assert.False(t, s.Move(0, 2))
	assert.Equal(t, []string{"P1", "P2"}, s.IDs())
}

func TestStore_ItemsDevuelveCopia(t *testing.T) {
	s := newStore("a", "b")
	items := s.Items()
	items[0].ID = "mutado"
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}
