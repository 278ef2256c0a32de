package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/application/capability"
	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/view"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// prospectDetailModel es la ficha de un prospecto: datos del negocio, el
// proyecto asociado si ya existe y la checklist pre-venta.
type prospectDetailModel struct {
	prospect entity.Prospect
	cursor   int
	modal    modalKind
	input    textinput.Model
	errMsg   string
}

func newProspectDetailModel(p entity.Prospect) prospectDetailModel {
	return prospectDetailModel{prospect: p}
}

func (m prospectDetailModel) update(msg tea.Msg, deps Deps) (prospectDetailModel, tea.Cmd) {
	if m.modal == modalNewSubtask {
		return m.updateModal(msg, deps)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		role := currentRole(deps)
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.prospect.Subtasks)-1 {
				m.cursor++
			}
		case " ":
			// La checklist solo alterna entre pendiente y hecha.
			if m.cursor >= len(m.prospect.Subtasks) {
				return m, nil
			}
			if !capability.CanPerform(role, capability.ActionEditSubtask) {
				m.errMsg = "tu rol no puede editar la checklist"
				return m, nil
			}
			st := m.prospect.Subtasks[m.cursor]
			next := 0
			if st.Progress != entity.CheckpointDone {
				next = int(entity.CheckpointDone)
			}
			return m, deps.mutateProspectSubtaskCmd(m.prospect.NoProject, func(ctx context.Context) error {
				return deps.Client.Subtasks().Update(ctx, st.ID, dto.UpdateSubtaskRequest{Progress: &next})
			})
		case "a":
			if !capability.CanPerform(role, capability.ActionCreateSubtask) {
				m.errMsg = "tu rol no puede añadir a la checklist"
				return m, nil
			}
			m.modal = modalNewSubtask
			in := textinput.New()
			in.Placeholder = "nueva tarea de checklist"
			in.CharLimit = 200
			in.Focus()
			m.input = in
			m.errMsg = ""
		case "D":
			if m.cursor >= len(m.prospect.Subtasks) {
				return m, nil
			}
			if !capability.CanPerform(role, capability.ActionDeleteSubtask) {
				m.errMsg = "tu rol no puede borrar de la checklist"
				return m, nil
			}
			st := m.prospect.Subtasks[m.cursor]
			return m, deps.mutateProspectSubtaskCmd(m.prospect.NoProject, func(ctx context.Context) error {
				return deps.Client.Subtasks().Delete(ctx, st.ID)
			})
		case "r":
			return m, deps.openProspectCmd(m.prospect.NoProject)
		}

	case prospectLoadedMsg:
		if msg.err != nil {
			m.errMsg = "no se pudo recargar el prospecto"
			return m, nil
		}
		if msg.prospect.NoProject == m.prospect.NoProject {
			m.prospect = msg.prospect
			if m.cursor >= len(m.prospect.Subtasks) {
				m.cursor = max(0, len(m.prospect.Subtasks)-1)
			}
		}
	}
	return m, nil
}

func (m prospectDetailModel) updateModal(msg tea.Msg, deps Deps) (prospectDetailModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.errMsg = "el nombre es requerido"
			return m, nil
		}
		m.modal = modalNone
		return m, deps.mutateProspectSubtaskCmd(m.prospect.NoProject, func(ctx context.Context) error {
			_, err := deps.Client.Subtasks().Create(ctx, dto.CreateSubtaskRequest{
				ProspectID: m.prospect.NoProject,
				Name:       name,
			})
			return err
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m prospectDetailModel) view() string {
	if m.modal == modalNewSubtask {
		var b strings.Builder
		b.WriteString(columnHeaderStyle.Render("Nueva tarea de checklist") + "\n\n")
		b.WriteString(m.input.View() + "\n")
		if m.errMsg != "" {
			b.WriteString("\n" + errorStyle.Render(m.errMsg))
		}
		b.WriteString("\n" + helpStyle.Render("enter: crear · esc: cancelar"))
		return modalStyle.Render(b.String())
	}

	p := m.prospect
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%s · %s", p.NoProject, p.NameProject)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("cliente: %s", p.ClientName))
	if p.ContactName != "" {
		b.WriteString("  contacto: " + p.ContactName)
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("estado: %s  valor: %s\n", p.Status, p.DealValue.String()))
	if p.Project != nil {
		label := "EN CURSO"
		if p.Project.IsDone {
			label = "CERRADO"
		}
		b.WriteString(dimStyle.Render("proyecto asociado: "+label) + "\n")
	}
	b.WriteString("\n" + columnHeaderStyle.Render("Checklist") + "\n")

	now := time.Now()
	if len(p.Subtasks) == 0 {
		b.WriteString(dimStyle.Render("  (vacía)") + "\n")
	}
	for i, st := range p.Subtasks {
		mark := "[ ]"
		if st.Progress == entity.CheckpointDone {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, truncate(st.Name, 40))
		switch {
		case i == m.cursor:
			b.WriteString(selectedCardStyle.Render(line))
		case view.IsOverdue(st, now):
			b.WriteString(overdueStyle.Render(line))
		case st.Progress == entity.CheckpointDone:
			b.WriteString(doneStyle.Render(line))
		default:
			b.WriteString(cardStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + helpStyle.Render("j/k: mover · espacio: alternar · a: nueva · D: borrar · r: recargar · esc: volver"))
	return b.String()
}
