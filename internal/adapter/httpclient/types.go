package httpclient

type (
	Product struct {
		IDKey       int64     `json:"id_key"`
		Name        string    `json:"name"`
		Price       float64   `json:"price"`
		Stock       int       `json:"stock"`
		Category    *Category `json:"category"`
		Image       *string   `json:"image"`
		Description *string   `json:"description"`
	}

	Category struct {
		IDKey int64  `json:"id_key"`
		Name  string `json:"name"`
	}
)

type User struct {
	IDKey     int64  `json:"id_key"`
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ClientRequest struct {
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}
