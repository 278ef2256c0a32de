package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/kanban"
	"github.com/tu-usuario/prospect-board/internal/application/ordering"
	"github.com/tu-usuario/prospect-board/internal/application/progress"
	"github.com/tu-usuario/prospect-board/internal/application/session"
	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/rest"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// requestTimeout acota cada llamada remota lanzada desde la interfaz.
const requestTimeout = 10 * time.Second

// Deps son las piezas de aplicación que la interfaz orquesta. La interfaz no
// habla con el backend directamente salvo para lecturas; toda mutación pasa
// por los motores, que son quienes conocen las políticas de rollback.
type Deps struct {
	Session   *session.Manager
	Prospects *store.Store[entity.Prospect]
	Projects  *store.Store[entity.Project]
	Board     *kanban.Engine
	Ordering  *ordering.Synchronizer
	Progress  *progress.Machine
	Client    *rest.Client
	Log       *logger.Logger
}

func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (d Deps) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return loginResultMsg{err: d.Session.Login(ctx, username, password)}
	}
}

// fetchBoardCmd recarga el caché de prospectos completo desde el backend.
func (d Deps) fetchBoardCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		list, err := d.Client.Prospects().List(ctx)
		if err != nil {
			return boardLoadedMsg{err: err}
		}
		d.Prospects.Replace(list)
		return boardLoadedMsg{}
	}
}

func (d Deps) fetchProjectsCmd(isDone bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		list, err := d.Client.Projects().List(ctx, isDone)
		if err != nil {
			return projectsLoadedMsg{isDone: isDone, err: err}
		}
		d.Projects.Replace(list)
		return projectsLoadedMsg{isDone: isDone}
	}
}

func (d Deps) fetchStatsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		stats, err := d.Client.Stats(ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// moveProspectCmd aplica el movimiento optimista; el motor revierte solo si
// el backend lo rechaza.
func (d Deps) moveProspectCmd(id string, dest entity.ProspectStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return moveResultMsg{id: id, dest: dest, err: d.Board.Move(ctx, id, dest)}
	}
}

func (d Deps) markRealLossCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return realLossResultMsg{id: id, err: d.Board.MarkRealLoss(ctx, id)}
	}
}

// reorderCmd mueve el proyecto en el caché y persiste en segundo plano.
// Nunca produce error visible: la política del orden es best-effort.
func (d Deps) reorderCmd(source, dest int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return reorderDoneMsg{ids: d.Ordering.Move(ctx, source, dest)}
	}
}

func (d Deps) openProjectCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		pj, err := d.Client.Projects().Get(ctx, id)
		return projectLoadedMsg{project: pj, err: err}
	}
}

func (d Deps) openProspectCmd(noProject string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		p, err := d.Client.Prospects().Get(ctx, noProject)
		return prospectLoadedMsg{prospect: p, err: err}
	}
}

func (d Deps) setCheckpointCmd(projectID, subtaskID string, cp entity.Checkpoint) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return subtaskMutatedMsg{projectID: projectID, err: d.Progress.SetCheckpoint(ctx, projectID, subtaskID, cp)}
	}
}

func (d Deps) createSubtaskCmd(in dto.CreateSubtaskRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return subtaskMutatedMsg{projectID: in.ProjectID, err: d.Progress.CreateSubtask(ctx, in)}
	}
}

func (d Deps) deleteSubtaskCmd(projectID, subtaskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		return subtaskMutatedMsg{projectID: projectID, err: d.Progress.DeleteSubtask(ctx, projectID, subtaskID)}
	}
}

func (d Deps) saveLinkCmd(projectID, link string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		err := d.Client.Projects().Update(ctx, projectID, dto.UpdateProjectRequest{Link: &link})
		return linkSavedMsg{projectID: projectID, err: err}
	}
}

// Las subtareas de checklist de un prospecto no tienen agregados que
// mantener, así que van directo al cliente y se refresca el detalle.
func (d Deps) mutateProspectSubtaskCmd(noProject string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		if err := fn(ctx); err != nil {
			return prospectLoadedMsg{err: err}
		}
		p, err := d.Client.Prospects().Get(ctx, noProject)
		return prospectLoadedMsg{prospect: p, err: err}
	}
}

func (d Deps) createProspectCmd(in dto.CreateProspectRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqCtx()
		defer cancel()
		p, err := d.Client.Prospects().Create(ctx, in)
		if err == nil {
			d.Prospects.Upsert(p)
		}
		return prospectCreatedMsg{prospect: p, err: err}
	}
}
