package models

// Student is a learner that can be placed in an advisor's cohort.
// RegistrationNumber is the only key used for roster membership.
type Student struct {
	ID                 string `db:"id" json:"id"`
	RegistrationNumber string `db:"registration_number" json:"registration_number"`
	Name               string `db:"name" json:"name"`
	Email              string `db:"email" json:"email"`
	Department         string `db:"department" json:"department"`
	Batch              string `db:"batch" json:"batch"`
	Active             bool   `db:"is_active" json:"is_active"`
}
