package model

import "github.com/google/uuid"

type Patient struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email,omitempty"`
	Phone string    `db:"phone" json:"phone,omitempty"`
}
