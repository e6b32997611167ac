package user

type BaseRequest struct {
	Login    string `json:"login" minLength:"3" maxLength:"32" doc:"Account login"`
	Password string `json:"password" minLength:"8" doc:"Account password"`
}
