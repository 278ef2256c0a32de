package tui

import (
	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

type screen int

const (
	viewLogin screen = iota
	viewBoard
	viewProjects
	viewProjectDetail
	viewProspectDetail
)

type modalKind int

const (
	modalNone modalKind = iota
	modalNewProspect
	modalNewSubtask
	modalEditLink
	modalConfirmRealLoss
)

// Mensajes de resultado de los comandos asíncronos. Cada comando termina en
// exactamente uno de éstos; los fallos de sesión viajan como errMsg y el
// enrutador decide si hay que volver al login.

type loginResultMsg struct {
	err error
}

type boardLoadedMsg struct {
	err error
}

type projectsLoadedMsg struct {
	isDone bool
	err    error
}

type moveResultMsg struct {
	id   string
	dest entity.ProspectStatus
	err  error
}

type realLossResultMsg struct {
	id  string
	err error
}

type reorderDoneMsg struct {
	ids []string
}

type projectLoadedMsg struct {
	project entity.Project
	err     error
}

type prospectLoadedMsg struct {
	prospect entity.Prospect
	err      error
}

type subtaskMutatedMsg struct {
	projectID string
	err       error
}

type prospectCreatedMsg struct {
	prospect entity.Prospect
	err      error
}

type statsLoadedMsg struct {
	stats dto.StatsResponse
	err   error
}

type linkSavedMsg struct {
	projectID string
	err       error
}
