// Package capability centraliza la tabla rol→permiso que antes vivía como
// listas de roles dispersas en cada página. Es una verificación ADVISORIA:
// decide si la interfaz ofrece una acción, nunca si el backend la acepta.
// El backend re-valida cada mutación por su cuenta (RequireRole en el stub).
package capability

import "github.com/tu-usuario/prospect-board/internal/domain/entity"

// Action es el enum cerrado de acciones que la interfaz puede ofrecer.
type Action string

const (
	ActionCreateProspect    Action = "createProspect"
	ActionMoveProspect      Action = "moveProspect"
	ActionMarkRealLoss      Action = "markRealLoss"
	ActionCreateSubtask     Action = "createSubtask"
	ActionEditSubtask       Action = "editSubtask"
	ActionDeleteSubtask     Action = "deleteSubtask"
	ActionToggleProjectDone Action = "toggleProjectDone"
	ActionEditProjectLink   Action = "editProjectLink"
	ActionReorderProjects   Action = "reorderProjects"
)

// table es la única fuente de verdad de permisos del cliente.
var table = map[Action][]entity.Role{
	ActionCreateProspect:    {entity.RoleSales, entity.RoleManager, entity.RoleSuperadmin},
	ActionMoveProspect:      allRoles,
	ActionMarkRealLoss:      {entity.RoleManager, entity.RoleSuperadmin},
	ActionCreateSubtask:     allRoles,
	ActionEditSubtask:       allRoles,
	ActionDeleteSubtask:     {entity.RoleManager, entity.RoleSuperadmin},
	ActionToggleProjectDone: {entity.RoleManager, entity.RoleSuperadmin},
	ActionEditProjectLink:   {entity.RoleManager, entity.RoleSuperadmin, entity.RoleEngineer},
	ActionReorderProjects:   allRoles,
}

var allRoles = []entity.Role{entity.RoleSuperadmin, entity.RoleManager, entity.RoleSales, entity.RoleEngineer}

// CanPerform reporta si el rol puede ejecutar la acción según la tabla.
// Un rol o acción desconocidos responden false.
func CanPerform(role entity.Role, action Action) bool {
	if !role.Valid() {
		return false
	}
	for _, r := range table[action] {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedRoles devuelve los roles habilitados para la acción; lo consume el
// stub para montar la misma tabla del lado servidor.
func AllowedRoles(action Action) []entity.Role {
	roles := table[action]
	out := make([]entity.Role, len(roles))
	copy(out, roles)
	return out
}
