// Package store implementa la caché local genérica de una colección de
// entidades remotas. Es la fuente de verdad de despliegue entre round-trips:
// soporta mutación optimista in-place y restauración de un snapshot previo.
package store

import "sync"

// Store caché de una colección, indexada por la clave natural de cada
// elemento. Segura para uso concurrente: las finalizaciones de llamadas
// remotas pueden intercalarse con nuevas mutaciones.
type Store[T any] struct {
	mu    sync.RWMutex
	items []T
	key   func(T) string
}

// New construye una caché vacía. key extrae la clave natural de un elemento.
func New[T any](key func(T) string) *Store[T] {
	return &Store[T]{key: key}
}

// Replace sustituye la colección completa (tras un fetch).
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]T, len(items))
	copy(s.items, items)
}

// Items devuelve una copia de la colección en su orden actual.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len devuelve el número de elementos cacheados.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get devuelve el elemento con la clave dada, si está cacheado.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if s.key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Update aplica fn al elemento con la clave dada. Reporta false si el
// elemento ya no está en la caché (p.ej. la vista fue descartada y
// refetcheada mientras una llamada estaba en vuelo).
func (s *Store[T]) Update(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.key(s.items[i]) == id {
			fn(&s.items[i])
			return true
		}
	}
	return false
}

// Upsert reemplaza el elemento con la misma clave o lo añade al final.
func (s *Store[T]) Upsert(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.key(item)
	for i := range s.items {
		if s.key(s.items[i]) == id {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

// Remove elimina el elemento con la clave dada. Reporta si existía.
func (s *Store[T]) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.key(s.items[i]) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Move reubica el elemento en source a dest desplazando los intermedios una
// posición (semántica array-move: sin duplicados ni pérdidas). Reporta false
// si algún índice queda fuera de rango.
func (s *Store[T]) Move(source, dest int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	if source < 0 || source >= n || dest < 0 || dest >= n {
		return false
	}
	if source == dest {
		return true
	}
	moved := s.items[source]
	out := make([]T, 0, n)
	out = append(out, s.items[:source]...)
	out = append(out, s.items[source+1:]...)
	out = append(out, moved) // crece en uno; el copy de abajo lo coloca
	copy(out[dest+1:], out[dest:n-1])
	out[dest] = moved
	s.items = out
	return true
}

// IDs devuelve las claves en el orden actual de la colección.
func (s *Store[T]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = s.key(it)
	}
	return out
}
