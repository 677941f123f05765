package request

type CreateSeminarRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Capacity    int    `json:"capacity" validate:"required,gt=0,max=100000"`
}
