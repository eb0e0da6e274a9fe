package models

// RegisterRequest — входные данные запроса регистрации.
//
// Поля объявлены указателями, чтобы отличать отсутствующее или null-значение
// от пустой строки. Порядок правил в тегах validate задает порядок проверки
// внутри каждого поля: первая нарушенная проверка останавливает цепочку.
type RegisterRequest struct {
	Username *string `json:"username" validate:"required,min=4,max=32"`
	Email    *string `json:"email" validate:"required,email"`
	Password *string `json:"password" validate:"required,min=6,max=18,passwd"`
}
