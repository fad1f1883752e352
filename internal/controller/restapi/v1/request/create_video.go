package request

type CreateVideo struct {
	FileName string `json:"fileName" validate:"required,max=255" example:"meu_treino.mp4"`
}
