package handler

type signupResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}
