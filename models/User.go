package models

import "gorm.io/gorm"

// User is a staff account. Guests book without accounts; rows here exist only
// for the back-office (staff, admin, super_admin).
type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	Role      string `json:"role" gorm:"type:varchar(20);default:staff;index"` // staff, admin, super_admin
}
