package employee

import (
	"time"

	"github.com/workstack/org-messaging/internal/core/datamodel/department"
)

// Role is a job title record; role names drive the admin and management
// checks in the permission layer.
type Role struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (Role) TableName() string {
	return "roles"
}

// Employee is the directory record. Manager is a self-reference forming
// the reporting tree; an employee may sit outside any department.
type Employee struct {
	ID           int64                  `json:"id" gorm:"primaryKey"`
	AccountID    int64                  `json:"account_id" gorm:"column:account_id;uniqueIndex"`
	Name         string                 `json:"name" gorm:"not null"`
	Email        string                 `json:"email" gorm:"not null;uniqueIndex"`
	HireDate     time.Time              `json:"hire_date" gorm:"column:hire_date"`
	DepartmentID *int64                 `json:"department_id,omitempty" gorm:"column:department_id"`
	Department   *department.Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	RoleID       *int64                 `json:"role_id,omitempty" gorm:"column:role_id"`
	Role         *Role                  `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	ManagerID    *int64                 `json:"manager_id,omitempty" gorm:"column:manager_id"`
	Manager      *Employee              `json:"manager,omitempty" gorm:"foreignKey:ManagerID"`
	CreatedAt    time.Time              `json:"created_at" gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time              `json:"updated_at" gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Employee) TableName() string {
	return "employees"
}

// Account holds login credentials for an employee. The messaging engine
// never reads the hash; it exists for the seeder and the auth middleware's
// account-to-employee resolution.
type Account struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Account) TableName() string {
	return "accounts"
}
