package readlists

type CreateReadListPayload struct {
	Name    string `json:"name" validate:"required,max=200"`
	Summary string `json:"summary"`
}

type ListReadListsQuery struct {
	Limit  int `query:"limit" default:"10" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

type UpdateReadListPayload struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Summary *string `json:"summary"`
}

type AddBookPayload struct {
	BookID   int  `json:"book_id" validate:"required"`
	Position *int `json:"position" validate:"omitempty,min=1"`
}
