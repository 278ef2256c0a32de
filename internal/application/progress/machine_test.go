package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/progress"
	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// fakeBackend implementa SubtaskGateway y ProjectGateway sobre un proyecto
// en memoria, recomputando el agregado como lo haría el backend real.
type fakeBackend struct {
	project     entity.Project
	updateErr   error
	getCalls    int
	updateCalls int
}

func (f *fakeBackend) Get(_ context.Context, id string) (entity.Project, error) {
	f.getCalls++
	return f.project, nil
}
func (f *fakeBackend) List(context.Context, bool) ([]entity.Project, error)          { return nil, nil }
func (f *fakeBackend) Update(context.Context, string, dto.UpdateProjectRequest) error { return nil }
func (f *fakeBackend) Reorder(context.Context, []string) error                        { return nil }

func (f *fakeBackend) GetSubtask(_ context.Context, id string) (entity.Subtask, error) {
	for _, st := range f.project.Subtasks {
		if st.ID == id {
			return st, nil
		}
	}
	return entity.Subtask{}, domain.ErrNotFound
}

func (f *fakeBackend) Create(_ context.Context, in dto.CreateSubtaskRequest) (entity.Subtask, error) {
	st := entity.Subtask{ID: "nueva", ProjectID: in.ProjectID, Name: in.Name, Deadline: in.Deadline}
	f.project.Subtasks = append(f.project.Subtasks, st)
	f.recompute()
	return st, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	for i, st := range f.project.Subtasks {
		if st.ID == id {
			f.project.Subtasks = append(f.project.Subtasks[:i], f.project.Subtasks[i+1:]...)
			f.recompute()
			return nil
		}
	}
	return domain.ErrNotFound
}

// subtaskGateway adapta los métodos de subtarea (Get colisiona con el de proyecto).
type subtaskGateway struct{ b *fakeBackend }

func (g subtaskGateway) Get(ctx context.Context, id string) (entity.Subtask, error) {
	return g.b.GetSubtask(ctx, id)
}
func (g subtaskGateway) Create(ctx context.Context, in dto.CreateSubtaskRequest) (entity.Subtask, error) {
	return g.b.Create(ctx, in)
}
func (g subtaskGateway) Update(_ context.Context, id string, in dto.UpdateSubtaskRequest) error {
	g.b.updateCalls++
	if g.b.updateErr != nil {
		return g.b.updateErr
	}
	for i := range g.b.project.Subtasks {
		if g.b.project.Subtasks[i].ID == id {
			if in.Progress != nil {
				g.b.project.Subtasks[i].Progress = entity.Checkpoint(*in.Progress)
			}
			if in.Name != nil {
				g.b.project.Subtasks[i].Name = *in.Name
			}
			g.b.recompute()
			return nil
		}
	}
	return domain.ErrNotFound
}
func (g subtaskGateway) Delete(ctx context.Context, id string) error { return g.b.Delete(ctx, id) }

// recompute replica la regla de agregación del backend: progress = media,
// is_done ⇔ todas las subtareas en 100.
func (f *fakeBackend) recompute() {
	if len(f.project.Subtasks) == 0 {
		f.project.Progress = 0
		f.project.IsDone = false
		return
	}
	sum, all := 0, true
	for _, st := range f.project.Subtasks {
		sum += int(st.Progress)
		if st.Progress != entity.CheckpointDone {
			all = false
		}
	}
	f.project.Progress = sum / len(f.project.Subtasks)
	f.project.IsDone = all
}

func backendWith(progresses ...int) *fakeBackend {
	p := entity.Project{ID: "proj-1"}
	for i, pr := range progresses {
		p.Subtasks = append(p.Subtasks, entity.Subtask{
			ID:       "st-" + string(rune('a'+i)),
			Progress: entity.Checkpoint(pr),
			Deadline: time.Now().Add(24 * time.Hour),
		})
	}
	b := &fakeBackend{project: p}
	b.recompute()
	return b
}

func machineOver(b *fakeBackend) (*progress.Machine, *store.Store[entity.Project]) {
	cache := store.New(func(p entity.Project) string { return p.ID })
	cache.Replace([]entity.Project{b.project})
	return progress.New(cache, subtaskGateway{b}, b, logger.Nop()), cache
}

func TestSetCheckpoint_RefetcheaElAgregado(t *testing.T) {
	// [100, 100, 80]: is_done=false. Al subir la tercera a 100, el refetch
	// debe observar is_done=true.
	b := backendWith(100, 100, 80)
	m, cache := machineOver(b)

	got, _ := cache.Get("proj-1")
	require.False(t, got.IsDone)
	require.Equal(t, 93, got.Progress)

	err := m.SetCheckpoint(context.Background(), "proj-1", "st-c", entity.CheckpointDone)
	require.NoError(t, err)

	got, ok := cache.Get("proj-1")
	require.True(t, ok)
	assert.True(t, got.IsDone)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 1, b.getCalls, "exactamente un refetch del padre")
}

func TestSetCheckpoint_RegresionReabreElProyecto(t *testing.T) {
	b := backendWith(100, 100, 100)
	m, cache := machineOver(b)

	err := m.SetCheckpoint(context.Background(), "proj-1", "st-b", entity.CheckpointIFA)
	require.NoError(t, err)

	got, _ := cache.Get("proj-1")
	assert.False(t, got.IsDone, "una subtarea por debajo de 100 reabre el agregado")
	assert.Equal(t, 86, got.Progress)
}

func TestSetCheckpoint_ValorIntermedioRechazado(t *testing.T) {
	b := backendWith(0)
	m, _ := machineOver(b)

	err := m.SetCheckpoint(context.Background(), "proj-1", "st-a", entity.Checkpoint(55))
	require.ErrorIs(t, err, domain.ErrInvalidCheckpoint)
	assert.Equal(t, 0, b.updateCalls, "sin llamada remota para un checkpoint inválido")
}

func TestSetCheckpoint_SinAplicacionOptimista(t *testing.T) {
	b := backendWith(0)
	b.updateErr = errors.New("500")
	m, cache := machineOver(b)

	err := m.SetCheckpoint(context.Background(), "proj-1", "st-a", entity.CheckpointIFI)
	require.Error(t, err)

	got, _ := cache.Get("proj-1")
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, entity.CheckpointNew, got.Subtasks[0].Progress, "el fallo no deja rastro local")
}

func TestRefetch_ProyectoEvictoSeDescarta(t *testing.T) {
	b := backendWith(0)
	m, cache := machineOver(b)
	cache.Replace(nil) // la vista fue descartada

	err := m.SetCheckpoint(context.Background(), "proj-1", "st-a", entity.CheckpointIFI)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len(), "el refetch no resucita un proyecto evicto")
}

func TestCreateYDeleteSubtask_RefrescanElPadre(t *testing.T) {
	b := backendWith(100)
	m, cache := machineOver(b)

	err := m.CreateSubtask(context.Background(), dto.CreateSubtaskRequest{
		ProjectID: "proj-1",
		Name:      "nueva tarea",
		Deadline:  time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	got, _ := cache.Get("proj-1")
	assert.False(t, got.IsDone, "el alta en NEW reabre el proyecto")
	assert.Equal(t, 50, got.Progress)

	err = m.DeleteSubtask(context.Background(), "proj-1", "nueva")
	require.NoError(t, err)
	got, _ = cache.Get("proj-1")
	assert.True(t, got.IsDone)
	assert.Equal(t, 100, got.Progress)
}
