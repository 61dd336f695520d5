package models

import "gorm.io/gorm"

// Address is embedded into Customer; its columns live on the customers table.
type Address struct {
	HouseNo  string `json:"houseNo" gorm:"size:50"`
	Street   string `json:"street" gorm:"size:150"`
	Landmark string `json:"landmark" gorm:"size:150"`
	City     string `json:"city" gorm:"size:100"`
	State    string `json:"state" gorm:"size:100"`
	Pincode  string `json:"pincode" gorm:"size:10"`
}

type Customer struct {
	gorm.Model
	Name     string `json:"name" gorm:"size:120;not null"`
	Email    string `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Phone    string `json:"phone" gorm:"size:20;uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	IsAdmin  bool   `json:"isAdmin"`
	Address
}

type RegisterData struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,min=7,max=20"`
	Password string `json:"password" binding:"required,min=6"`
	HouseNo  string `json:"houseNo" binding:"max=50"`
	Street   string `json:"street" binding:"max=150"`
	Landmark string `json:"landmark" binding:"max=150"`
	City     string `json:"city" binding:"max=100"`
	State    string `json:"state" binding:"max=100"`
	Pincode  string `json:"pincode" binding:"omitempty,pincode"`
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileData carries a partial profile edit; nil fields are left untouched.
type ProfileData struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone" binding:"omitempty,min=7,max=20"`
	HouseNo  *string `json:"houseNo" binding:"omitempty,max=50"`
	Street   *string `json:"street" binding:"omitempty,max=150"`
	Landmark *string `json:"landmark" binding:"omitempty,max=150"`
	City     *string `json:"city" binding:"omitempty,max=100"`
	State    *string `json:"state" binding:"omitempty,max=100"`
	Pincode  *string `json:"pincode" binding:"omitempty,pincode"`
}

// Updates returns the column map for the fields present in the edit.
func (p ProfileData) Updates() map[string]any {
	updates := map[string]any{}
	set := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	set("name", p.Name)
	set("phone", p.Phone)
	set("house_no", p.HouseNo)
	set("street", p.Street)
	set("landmark", p.Landmark)
	set("city", p.City)
	set("state", p.State)
	set("pincode", p.Pincode)
	return updates
}
