// Package model holds the domain records shared by every layer.
package model

// Todo is a single todo item as stored in the todos table.
type Todo struct {
	ID        int64  `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Completed bool   `json:"completed" db:"completed"`
}

// TodoPatch carries a partial update. Nil fields keep their stored value.
type TodoPatch struct {
	Title     *string
	Completed *bool
}
