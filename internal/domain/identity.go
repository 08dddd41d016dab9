package domain

// Identity — владелец сессии: пользователь и признак администратора.
type Identity struct {
	UserID string `json:"userId"`
	Admin  bool   `json:"admin"`
}
