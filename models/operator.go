package models

import "time"

// Operator — учётная запись пульта оператора. Движок рассчитан на одного
// логического писателя, но читающих консолей может быть несколько.
type Operator struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // operator | viewer
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)
