package models

// User representa um usuário registrado. O campo Password guarda apenas o
// hash bcrypt, nunca a senha em texto puro.
type User struct {
	Username  string `json:"username" firestore:"username"`
	Password  string `json:"password" firestore:"password"`
	Email     string `json:"email" firestore:"email"`
	CreatedAt string `json:"created_at" firestore:"created_at"`
}
