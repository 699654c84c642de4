package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   Grant-based permissions
   role (by name) × module (by code) → allowed actions
========================================================= */

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type RoleModel struct {
	RoleID      uuid.UUID `gorm:"type:uuid;primaryKey;column:id_role" json:"id_role"`
	Name        string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_roles_nom;column:nom_role" json:"nom_role"`
	Description string    `gorm:"type:text;column:description" json:"description,omitempty"`
	// explicit data scope for actors of this role; nil = derived from role name
	AccessLevel *string   `gorm:"type:varchar(32);column:niveau_acces" json:"niveau_acces,omitempty"`
	CreatedAt   time.Time `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
}

func (RoleModel) TableName() string { return "roles" }

func (m *RoleModel) BeforeCreate(tx *gorm.DB) error {
	if m.RoleID == uuid.Nil {
		m.RoleID = uuid.New()
	}
	return nil
}

type ModuleModel struct {
	ModuleID uuid.UUID `gorm:"type:uuid;primaryKey;column:id_module" json:"id_module"`
	Code     string    `gorm:"type:varchar(60);not null;uniqueIndex:uq_modules_code;column:code" json:"code"`
	Name     string    `gorm:"type:varchar(120);column:nom_module" json:"nom_module"`
}

func (ModuleModel) TableName() string { return "modules" }

func (m *ModuleModel) BeforeCreate(tx *gorm.DB) error {
	if m.ModuleID == uuid.Nil {
		m.ModuleID = uuid.New()
	}
	return nil
}

type RolePermissionModel struct {
	RolePermissionID uuid.UUID `gorm:"type:uuid;primaryKey;column:id_permission" json:"id_permission"`
	RoleName         string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_role_permissions,priority:1;column:nom_role" json:"nom_role"`
	ModuleCode       string    `gorm:"type:varchar(60);not null;uniqueIndex:uq_role_permissions,priority:2;column:code_module" json:"code_module"`
	// comma separated: view,create,update,delete ("*" = all)
	Actions   string    `gorm:"type:varchar(120);not null;column:actions" json:"actions"`
	CreatedAt time.Time `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
}

func (RolePermissionModel) TableName() string { return "role_permissions" }

func (m *RolePermissionModel) BeforeCreate(tx *gorm.DB) error {
	if m.RolePermissionID == uuid.Nil {
		m.RolePermissionID = uuid.New()
	}
	return nil
}

// Allows reports whether action is granted by this row.
func (m RolePermissionModel) Allows(action string) bool {
	action = strings.ToLower(strings.TrimSpace(action))
	for _, a := range strings.Split(m.Actions, ",") {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "*" || a == action {
			return true
		}
	}
	return false
}
