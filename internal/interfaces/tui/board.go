package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/prospect-board/internal/application/capability"
	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// boardModel es el tablero kanban de prospectos. El estado de verdad vive en
// el caché compartido; aquí solo hay cursor, modal y mensajes de estado.
type boardModel struct {
	col    int
	row    map[int]int // fila seleccionada por columna
	modal  modalKind
	form   prospectForm
	target string // prospecto pendiente de confirmación REAL_LOSS
	notice string
	errMsg string
}

type prospectForm struct {
	inputs []textinput.Model
	focus  int
}

func newProspectForm() prospectForm {
	labels := []string{"no_project (ej. IMX.2026.001)", "nombre del proyecto", "cliente", "contacto", "valor del negocio"}
	inputs := make([]textinput.Model, len(labels))
	for i, l := range labels {
		in := textinput.New()
		in.Placeholder = l
		in.CharLimit = 120
		inputs[i] = in
	}
	inputs[0].Focus()
	return prospectForm{inputs: inputs}
}

func newBoardModel() boardModel {
	return boardModel{row: make(map[int]int)}
}

// columnItems agrupa los prospectos del caché por columna del tablero.
// Los REAL_LOSS no tienen columna y desaparecen de aquí.
func columnItems(deps Deps) map[entity.ProspectStatus][]entity.Prospect {
	grouped := make(map[entity.ProspectStatus][]entity.Prospect)
	for _, p := range deps.Prospects.Items() {
		if p.Status.BoardVisible() {
			grouped[p.Status] = append(grouped[p.Status], p)
		}
	}
	return grouped
}

func (m boardModel) selected(deps Deps) (entity.Prospect, bool) {
	statuses := entity.BoardStatuses()
	if m.col < 0 || m.col >= len(statuses) {
		return entity.Prospect{}, false
	}
	items := columnItems(deps)[statuses[m.col]]
	row := m.row[m.col]
	if row < 0 || row >= len(items) {
		return entity.Prospect{}, false
	}
	return items[row], true
}

func (m boardModel) update(msg tea.Msg, deps Deps) (boardModel, tea.Cmd) {
	if m.modal == modalNewProspect {
		return m.updateForm(msg, deps)
	}
	if m.modal == modalConfirmRealLoss {
		return m.updateConfirm(msg, deps)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		role := currentRole(deps)
		statuses := entity.BoardStatuses()
		switch msg.String() {
		case "left", "h":
			if m.col > 0 {
				m.col--
			}
		case "right", "l":
			if m.col < len(statuses)-1 {
				m.col++
			}
		case "up", "k":
			if m.row[m.col] > 0 {
				m.row[m.col]--
			}
		case "down", "j":
			n := len(columnItems(deps)[statuses[m.col]])
			if m.row[m.col] < n-1 {
				m.row[m.col]++
			}
		case "H", "shift+left":
			if p, ok := m.selected(deps); ok && m.col > 0 {
				if !capability.CanPerform(role, capability.ActionMoveProspect) {
					m.errMsg = "tu rol no puede mover prospectos"
					return m, nil
				}
				m.errMsg = ""
				return m, deps.moveProspectCmd(p.NoProject, statuses[m.col-1])
			}
		case "L", "shift+right":
			if p, ok := m.selected(deps); ok && m.col < len(statuses)-1 {
				if !capability.CanPerform(role, capability.ActionMoveProspect) {
					m.errMsg = "tu rol no puede mover prospectos"
					return m, nil
				}
				m.errMsg = ""
				return m, deps.moveProspectCmd(p.NoProject, statuses[m.col+1])
			}
		case "x":
			// El castigo REAL_LOSS solo se ofrece sobre la columna LOSS.
			if p, ok := m.selected(deps); ok && p.Status == entity.StatusLoss {
				if !capability.CanPerform(role, capability.ActionMarkRealLoss) {
					m.errMsg = "tu rol no puede marcar REAL LOSS"
					return m, nil
				}
				m.modal = modalConfirmRealLoss
				m.target = p.NoProject
				m.errMsg = ""
			}
		case "n":
			if !capability.CanPerform(role, capability.ActionCreateProspect) {
				m.errMsg = "tu rol no puede crear prospectos"
				return m, nil
			}
			m.modal = modalNewProspect
			m.form = newProspectForm()
			m.errMsg = ""
		case "r":
			return m, deps.fetchBoardCmd()
		}

	case moveResultMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("no se pudo mover %s: se revirtió el cambio", msg.id)
		} else {
			m.errMsg = ""
		}

	case realLossResultMsg:
		m.modal = modalNone
		m.target = ""
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("no se pudo marcar REAL LOSS: %v", msg.err)
		} else {
			m.notice = fmt.Sprintf("%s marcado como REAL LOSS; se creó su proyecto cerrado", msg.id)
		}

	case prospectCreatedMsg:
		if msg.err == nil {
			m.modal = modalNone
			m.notice = "prospecto " + msg.prospect.NoProject + " creado"
		}

	case boardLoadedMsg:
		if msg.err != nil {
			m.errMsg = "no se pudo recargar el tablero"
		}
		// Reencuadrar cursores tras el refetch.
		statuses := entity.BoardStatuses()
		grouped := columnItems(deps)
		for c := range m.row {
			if n := len(grouped[statuses[c]]); m.row[c] >= n {
				m.row[c] = max(0, n-1)
			}
		}
	}
	return m, nil
}

func (m boardModel) updateConfirm(msg tea.Msg, deps Deps) (boardModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y", "enter":
		return m, deps.markRealLossCmd(m.target)
	case "n", "N", "esc":
		m.modal = modalNone
		m.target = ""
	}
	return m, nil
}

func (m boardModel) updateForm(msg tea.Msg, deps Deps) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			return m, nil
		case "tab", "down":
			m.form.focus = (m.form.focus + 1) % len(m.form.inputs)
		case "shift+tab", "up":
			m.form.focus = (m.form.focus + len(m.form.inputs) - 1) % len(m.form.inputs)
		case "enter":
			return m.submitForm(deps)
		default:
			var cmd tea.Cmd
			m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
			return m, cmd
		}
		for i := range m.form.inputs {
			if i == m.form.focus {
				m.form.inputs[i].Focus()
			} else {
				m.form.inputs[i].Blur()
			}
		}
		return m, nil

	case prospectCreatedMsg:
		if msg.err != nil {
			m.errMsg = "no se pudo crear: " + msg.err.Error()
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) submitForm(deps Deps) (boardModel, tea.Cmd) {
	vals := make([]string, len(m.form.inputs))
	for i := range m.form.inputs {
		vals[i] = strings.TrimSpace(m.form.inputs[i].Value())
	}
	if vals[0] == "" || vals[1] == "" || vals[2] == "" {
		m.errMsg = "no_project, nombre y cliente son requeridos"
		return m, nil
	}
	deal := decimal.Zero
	if vals[4] != "" {
		var err error
		deal, err = decimal.NewFromString(vals[4])
		if err != nil {
			m.errMsg = "el valor del negocio debe ser numérico"
			return m, nil
		}
	}
	m.errMsg = ""
	return m, deps.createProspectCmd(dto.CreateProspectRequest{
		NoProject:   vals[0],
		NameProject: vals[1],
		ClientName:  vals[2],
		ContactName: vals[3],
		DealValue:   deal,
	})
}

func (m boardModel) view(deps Deps, width int) string {
	if m.modal == modalNewProspect {
		return m.formView()
	}
	if m.modal == modalConfirmRealLoss {
		return modalStyle.Render(fmt.Sprintf(
			"¿Marcar %s como REAL LOSS?\n\nEsto es terminal: saldrá del tablero\ny se creará su proyecto cerrado.\n\n[y] confirmar   [n] cancelar", m.target))
	}

	statuses := entity.BoardStatuses()
	grouped := columnItems(deps)
	colWidth := 24
	if width > 0 {
		if w := width/len(statuses) - 4; w > 18 {
			colWidth = w
		}
	}

	cols := make([]string, 0, len(statuses))
	for c, status := range statuses {
		items := grouped[status]
		var body strings.Builder
		body.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", status, len(items))))
		body.WriteString("\n")
		for i, p := range items {
			line := fmt.Sprintf("%s %s", p.NoProject, truncate(p.NameProject, colWidth-12))
			if c == m.col && i == m.row[m.col] {
				body.WriteString(selectedCardStyle.Render(line))
			} else {
				body.WriteString(cardStyle.Render(line))
			}
			body.WriteString("\n")
		}
		style := columnStyle
		if c == m.col {
			style = focusedColumnStyle
		}
		cols = append(cols, style.Width(colWidth).Render(body.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	} else if m.notice != "" {
		out += "\n" + noticeStyle.Render(m.notice)
	}
	out += "\n" + helpStyle.Render("h/l: columna · j/k: fila · H/L: mover prospecto · x: real loss · n: nuevo · enter: detalle · r: recargar")
	return out
}

func (m boardModel) formView() string {
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render("Nuevo prospecto"))
	b.WriteString("\n\n")
	for i := range m.form.inputs {
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n" + helpStyle.Render("tab: campo · enter: crear · esc: cancelar"))
	return modalStyle.Render(b.String())
}

// truncate recorta por ancho de celda, no por bytes, para no partir
// caracteres multibyte a mitad de secuencia.
func truncate(s string, n int) string {
	if n <= 3 || runewidth.StringWidth(s) <= n {
		return s
	}
	return runewidth.Truncate(s, n, "...")
}
