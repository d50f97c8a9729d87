package models

import "time"

type DisplayStatus string

const (
	StatusHide    DisplayStatus = "hide"
	StatusDisplay DisplayStatus = "display"
)

type Division struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	TitleEN   string        `gorm:"size:200" json:"title_en"`
	TitleUK   string        `gorm:"size:200" json:"title_uk"`
	Status    DisplayStatus `gorm:"size:20;default:'hide';index" json:"status"`
	Branches  []Branch      `gorm:"foreignKey:DivisionID" json:"branches,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Branch struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	DivisionID uint          `gorm:"index;not null" json:"division_id"`
	TitleEN    string        `gorm:"size:200" json:"title_en"`
	TitleUK    string        `gorm:"size:200" json:"title_uk"`
	Address    string        `gorm:"size:500" json:"address"`
	Postcode   string        `gorm:"size:10" json:"postcode"`
	Status     DisplayStatus `gorm:"size:20;default:'hide';index" json:"status"`
	Persons    []Person      `gorm:"foreignKey:BranchID" json:"persons,omitempty"`
	Phones     []Phone       `gorm:"foreignKey:BranchID" json:"phones,omitempty"`
	Emails     []Email       `gorm:"foreignKey:BranchID" json:"emails,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type Person struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"index;not null" json:"branch_id"`
	Name      string    `gorm:"size:200" json:"name"`
	Position  string    `gorm:"size:200" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Phone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"index;not null" json:"branch_id"`
	Number    string    `gorm:"size:20" json:"number"`
	CreatedAt time.Time `json:"created_at"`
}

type Email struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"index;not null" json:"branch_id"`
	Address   string    `gorm:"size:254" json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
