package department

import "time"

// Department is a flat org unit. There is no typed "HR" flag; the HR
// department is identified by name convention in the directory layer.
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for GORM
func (Department) TableName() string {
	return "departments"
}
