package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/application/capability"
	"github.com/tu-usuario/prospect-board/internal/application/view"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// doneFilter es el filtro de la vista de cerrados: todos, cerrados normales
// o castigados.
type doneFilter int

const (
	filterAll doneFilter = iota
	filterDone
	filterRealLoss
)

func (f doneFilter) label() string {
	switch f {
	case filterDone:
		return "DONE"
	case filterRealLoss:
		return "REAL LOSS"
	default:
		return "TODOS"
	}
}

// projectsModel lista los proyectos: pestaña "en curso" (reordenable) y
// pestaña "cerrados" (solo lectura, con filtro).
type projectsModel struct {
	showDone bool
	filter   doneFilter
	cursor   int
	errMsg   string
}

func (m projectsModel) visible(deps Deps) []entity.Project {
	items := deps.Projects.Items()
	if !m.showDone {
		return items
	}
	switch m.filter {
	case filterDone:
		out := make([]entity.Project, 0, len(items))
		for _, p := range items {
			if p.Prospect.Status != entity.StatusRealLoss {
				out = append(out, p)
			}
		}
		return out
	case filterRealLoss:
		out := make([]entity.Project, 0, len(items))
		for _, p := range items {
			if p.Prospect.Status == entity.StatusRealLoss {
				out = append(out, p)
			}
		}
		return out
	}
	return items
}

func (m projectsModel) update(msg tea.Msg, deps Deps) (projectsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		items := m.visible(deps)
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(items)-1 {
				m.cursor++
			}
		case "K", "shift+up":
			// Reordenar solo tiene sentido en la pestaña "en curso", donde la
			// lista visible coincide índice a índice con el caché.
			if !m.showDone && m.cursor > 0 {
				if !capability.CanPerform(currentRole(deps), capability.ActionReorderProjects) {
					m.errMsg = "tu rol no puede reordenar"
					return m, nil
				}
				src := m.cursor
				m.cursor--
				return m, deps.reorderCmd(src, src-1)
			}
		case "J", "shift+down":
			if !m.showDone && m.cursor < len(items)-1 {
				if !capability.CanPerform(currentRole(deps), capability.ActionReorderProjects) {
					m.errMsg = "tu rol no puede reordenar"
					return m, nil
				}
				src := m.cursor
				m.cursor++
				return m, deps.reorderCmd(src, src+1)
			}
		case "d":
			m.showDone = !m.showDone
			m.cursor = 0
			m.filter = filterAll
			return m, deps.fetchProjectsCmd(m.showDone)
		case "f":
			if m.showDone {
				m.filter = (m.filter + 1) % 3
				m.cursor = 0
			}
		case "r":
			return m, deps.fetchProjectsCmd(m.showDone)
		}

	case projectsLoadedMsg:
		if msg.err != nil {
			m.errMsg = "no se pudo cargar la lista de proyectos"
		} else {
			m.errMsg = ""
		}
		if n := len(m.visible(deps)); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
	}
	return m, nil
}

func (m projectsModel) view(deps Deps) string {
	var b strings.Builder
	if m.showDone {
		b.WriteString(columnHeaderStyle.Render("Proyectos cerrados") + dimStyle.Render("  filtro: "+m.filter.label()))
	} else {
		b.WriteString(columnHeaderStyle.Render("Proyectos en curso"))
	}
	b.WriteString("\n\n")

	items := m.visible(deps)
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  (sin proyectos)"))
	}
	for i, p := range items {
		label := view.ProjectStatusLabel(p)
		line := fmt.Sprintf("%-14s %-30s %s %3d%%  %s",
			p.Prospect.NoProject, truncate(p.Prospect.NameProject, 30), renderBar(p.Progress, 16), p.Progress, label)
		switch {
		case i == m.cursor:
			b.WriteString(selectedCardStyle.Render(line))
		case p.IsDone:
			b.WriteString(doneStyle.Render(line))
		default:
			b.WriteString(cardStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	help := "j/k: mover · J/K: reordenar · d: en curso/cerrados · enter: detalle · r: recargar"
	if m.showDone {
		help = "j/k: mover · f: filtro · d: en curso/cerrados · enter: detalle · r: recargar"
	}
	b.WriteString("\n" + helpStyle.Render(help))
	return b.String()
}
