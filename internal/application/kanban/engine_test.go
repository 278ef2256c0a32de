package kanban_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/kanban"
	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

const (
	timeoutEventually = 2 * time.Second
	tickEventually    = 5 * time.Millisecond
)

// fakeProspects simula el backend: cada llamada a UpdateStatus consulta la
// respuesta programada. blockOn permite retener una transición concreta para
// forzar finalizaciones intercaladas.
type fakeProspects struct {
	mu      sync.Mutex
	calls   []call
	fail    map[string]error // clave "id→status"
	blockOn map[string]chan struct{}
}

type call struct {
	id     string
	status entity.ProspectStatus
}

func (f *fakeProspects) List(context.Context) ([]entity.Prospect, error) { return nil, nil }
func (f *fakeProspects) Get(context.Context, string) (entity.Prospect, error) {
	return entity.Prospect{}, nil
}
func (f *fakeProspects) Create(context.Context, dto.CreateProspectRequest) (entity.Prospect, error) {
	return entity.Prospect{}, nil
}

func (f *fakeProspects) UpdateStatus(_ context.Context, id string, st entity.ProspectStatus) error {
	key := id + "→" + string(st)
	if ch, ok := f.blockOn[key]; ok {
		<-ch
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{id: id, status: st})
	if f.fail != nil {
		if err, ok := f.fail[key]; ok {
			return err
		}
	}
	return nil
}

func (f *fakeProspects) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newBoard(prospects ...entity.Prospect) *store.Store[entity.Prospect] {
	s := store.New(func(p entity.Prospect) string { return p.ID() })
	s.Replace(prospects)
	return s
}

func prospect(id string, st entity.ProspectStatus) entity.Prospect {
	return entity.Prospect{NoProject: id, NameProject: "Proyecto " + id, Status: st}
}

func TestMove_IdaYVuelta(t *testing.T) {
	cache := newBoard(prospect("IMX.001", entity.StatusLead))
	gw := &fakeProspects{}
	eng := kanban.New(cache, gw, logger.Nop())
	ctx := context.Background()

	require.NoError(t, eng.Move(ctx, "IMX.001", entity.StatusProposal))
	require.NoError(t, eng.Move(ctx, "IMX.001", entity.StatusLead))

	got, _ := cache.Get("IMX.001")
	assert.Equal(t, entity.StatusLead, got.Status, "ida y vuelta exitosas dejan el estado original")
	assert.Len(t, gw.calls, 2)
}

func TestMove_FalloRemotoRevierte(t *testing.T) {
	cache := newBoard(
		prospect("IMX.001", entity.StatusLead),
		prospect("IMX.002", entity.StatusHold),
	)
	gw := &fakeProspects{fail: map[string]error{
		"IMX.001→WON": &domain.NetworkError{Op: "put", Err: errors.New("timeout")},
	}}
	eng := kanban.New(cache, gw, logger.Nop())

	err := eng.Move(context.Background(), "IMX.001", entity.StatusWon)
	require.Error(t, err)

	got, _ := cache.Get("IMX.001")
	assert.Equal(t, entity.StatusLead, got.Status, "el fallo restaura el snapshot")
	other, _ := cache.Get("IMX.002")
	assert.Equal(t, entity.StatusHold, other.Status, "ningún otro prospecto se ve afectado")
}

func TestMove_OptimistaAntesDeConfirmar(t *testing.T) {
	hold := make(chan struct{})
	cache := newBoard(prospect("IMX.001", entity.StatusLead))
	gw := &fakeProspects{blockOn: map[string]chan struct{}{"IMX.001→PROPOSAL": hold}}
	eng := kanban.New(cache, gw, logger.Nop())

	done := make(chan error, 1)
	go func() { done <- eng.Move(context.Background(), "IMX.001", entity.StatusProposal) }()

	// La vista refleja el movimiento antes de que el backend confirme.
	assert.Eventually(t, func() bool {
		got, _ := cache.Get("IMX.001")
		return got.Status == entity.StatusProposal
	}, timeoutEventually, tickEventually)
	assert.Equal(t, 0, gw.callCount(), "la confirmación remota sigue en vuelo")

	close(hold)
	require.NoError(t, <-done)
}

func TestMove_RollbackObsoletoSeDescarta(t *testing.T) {
	// La transición A (que fallará) sigue en vuelo cuando la transición B
	// (exitosa) completa. El rollback tardío de A no debe pisar el estado de B.
	holdA := make(chan struct{})
	cache := newBoard(prospect("IMX.001", entity.StatusLead))
	gw := &fakeProspects{
		fail:    map[string]error{"IMX.001→PROPOSAL": errors.New("500")},
		blockOn: map[string]chan struct{}{"IMX.001→PROPOSAL": holdA},
	}
	eng := kanban.New(cache, gw, logger.Nop())

	first := make(chan error, 1)
	go func() { first <- eng.Move(context.Background(), "IMX.001", entity.StatusProposal) }()

	// Espera a que la mutación optimista de A esté aplicada.
	assert.Eventually(t, func() bool {
		got, _ := cache.Get("IMX.001")
		return got.Status == entity.StatusProposal
	}, timeoutEventually, tickEventually)

	// B llega después y completa primero (A sigue retenida en el gateway).
	require.NoError(t, eng.Move(context.Background(), "IMX.001", entity.StatusWon))

	// Ahora A completa con error; su rollback corresponde a un sello viejo.
	close(holdA)
	require.Error(t, <-first)

	got, _ := cache.Get("IMX.001")
	assert.Equal(t, entity.StatusWon, got.Status, "el rollback obsoleto se descarta")
}

func TestMove_RollbackSobreProspectoEvictoSeDescarta(t *testing.T) {
	// La vista se desmonta (la caché se refetchea sin el prospecto) mientras
	// la confirmación está en vuelo: la finalización no resucita nada.
	hold := make(chan struct{})
	cache := newBoard(prospect("IMX.001", entity.StatusLead))
	gw := &fakeProspects{
		fail:    map[string]error{"IMX.001→WON": errors.New("500")},
		blockOn: map[string]chan struct{}{"IMX.001→WON": hold},
	}
	eng := kanban.New(cache, gw, logger.Nop())

	done := make(chan error, 1)
	go func() { done <- eng.Move(context.Background(), "IMX.001", entity.StatusWon) }()

	assert.Eventually(t, func() bool {
		got, _ := cache.Get("IMX.001")
		return got.Status == entity.StatusWon
	}, timeoutEventually, tickEventually)

	cache.Replace(nil)
	close(hold)
	require.Error(t, <-done)
	assert.Equal(t, 0, cache.Len(), "el rollback tardío no resucita al prospecto")
}

func TestMove_ProspectoAusenteEsNoOp(t *testing.T) {
	cache := newBoard()
	gw := &fakeProspects{}
	eng := kanban.New(cache, gw, logger.Nop())

	require.NoError(t, eng.Move(context.Background(), "NO-EXISTE", entity.StatusWon))
	assert.Empty(t, gw.calls, "sin prospecto cacheado no hay llamada remota")
}

func TestMove_MismoEstadoEsNoOp(t *testing.T) {
	cache := newBoard(prospect("IMX.001", entity.StatusLead))
	gw := &fakeProspects{}
	eng := kanban.New(cache, gw, logger.Nop())

	require.NoError(t, eng.Move(context.Background(), "IMX.001", entity.StatusLead))
	assert.Empty(t, gw.calls)
}

func TestMove_RealLossNoEsDestinoDeArrastre(t *testing.T) {
	cache := newBoard(prospect("IMX.001", entity.StatusLoss))
	eng := kanban.New(cache, &fakeProspects{}, logger.Nop())

	err := eng.Move(context.Background(), "IMX.001", entity.StatusRealLoss)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestMarkRealLoss_SoloDesdeLoss(t *testing.T) {
	cache := newBoard(prospect("IMX.001", entity.StatusWon))
	gw := &fakeProspects{}
	eng := kanban.New(cache, gw, logger.Nop())

	err := eng.MarkRealLoss(context.Background(), "IMX.001")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, gw.calls, "el rechazo no genera llamada remota")

	got, _ := cache.Get("IMX.001")
	assert.Equal(t, entity.StatusWon, got.Status)
}

func TestMarkRealLoss_DesdeLossSaleDelTablero(t *testing.T) {
	cache := newBoard(prospect("IMX.001", entity.StatusLoss))
	gw := &fakeProspects{}
	eng := kanban.New(cache, gw, logger.Nop())

	require.NoError(t, eng.MarkRealLoss(context.Background(), "IMX.001"))

	_, ok := cache.Get("IMX.001")
	assert.False(t, ok, "REAL_LOSS es terminal y no visible en el tablero")
	require.Len(t, gw.calls, 1)
	assert.Equal(t, entity.StatusRealLoss, gw.calls[0].status)
}

func TestMarkRealLoss_FalloRemotoConservaElProspecto(t *testing.T) {
	cache := newBoard(prospect("IMX.001", entity.StatusLoss))
	gw := &fakeProspects{fail: map[string]error{"IMX.001→REAL_LOSS": errors.New("500")}}
	eng := kanban.New(cache, gw, logger.Nop())

	require.Error(t, eng.MarkRealLoss(context.Background(), "IMX.001"))
	got, ok := cache.Get("IMX.001")
	require.True(t, ok)
	assert.Equal(t, entity.StatusLoss, got.Status)
}
