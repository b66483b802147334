package models

type Subscriber struct {
	BaseModel
	Email string `gorm:"uniqueIndex" json:"email"`
}

type ContactMessage struct {
	BaseModel
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
