package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tu-usuario/prospect-board/internal/domain"
)

// loginModel es el formulario de acceso: dos campos y un mensaje de error
// inline. La contraseña nunca se pinta en claro.
type loginModel struct {
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errMsg   string
}

func newLoginModel() loginModel {
	user := textinput.New()
	user.Placeholder = "usuario"
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "contraseña"
	pass.CharLimit = 64
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return loginModel{username: user, password: pass}
}

func (m loginModel) update(msg tea.Msg, deps Deps) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.username.Focus()
				m.password.Blur()
			} else {
				m.username.Blur()
				m.password.Focus()
			}
			return m, nil
		case "enter":
			user := strings.TrimSpace(m.username.Value())
			pass := m.password.Value()
			if user == "" || pass == "" {
				m.errMsg = "usuario y contraseña son requeridos"
				return m, nil
			}
			m.busy = true
			m.errMsg = ""
			return m, deps.loginCmd(user, pass)
		}

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			if domain.IsAuthError(msg.err) {
				m.errMsg = "credenciales inválidas"
			} else if domain.IsNetworkError(msg.err) {
				m.errMsg = "no se pudo contactar al servidor"
			} else {
				m.errMsg = msg.err.Error()
			}
			m.password.SetValue("")
			return m, nil
		}
		// El enrutador raíz cambia de vista; aquí solo se limpia el formulario.
		m.password.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Prospect Board"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.username.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")
	if m.busy {
		b.WriteString(dimStyle.Render("  autenticando..."))
	} else if m.errMsg != "" {
		b.WriteString(errorStyle.Render("  " + m.errMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("  tab: cambiar campo · enter: entrar · ctrl+c: salir"))
	return b.String()
}
