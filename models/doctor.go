package models

import (
	"gorm.io/gorm"
)

type Doctor struct {
	gorm.Model
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Specialization string `json:"specialization"`
	PhotoURL       string `json:"photo_url"`
}

func (d Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
