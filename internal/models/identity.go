package models

// Identity is the authenticated operator as reported by the API
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
