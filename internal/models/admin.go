package models

// Admin is a back-office account. Passwords are stored as bcrypt hashes.
type Admin struct {
	BaseModel
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}
