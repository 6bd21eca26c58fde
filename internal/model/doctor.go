package model

import "github.com/google/uuid"

type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Department string    `db:"department" json:"department"`
	Email      string    `db:"email" json:"email,omitempty"`
}
