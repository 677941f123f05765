package entity

type Student struct {
	Base
	Name  string  `db:"name"`
	Email string  `db:"email"`
	Phone *string `db:"phone"`
}
