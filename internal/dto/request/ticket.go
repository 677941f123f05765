package request

type BookTicketRequest struct {
	SeminarID    int64  `json:"seminar_id" validate:"required,gt=0"`
	StudentName  string `json:"student_name" validate:"required,min=1,max=100"`
	StudentEmail string `json:"student_email" validate:"required,email,max=254"`
}

type VerifyTicketRequest struct {
	QRContent string `json:"qr_content" validate:"required"`
	SeminarID int64  `json:"seminar_id" validate:"omitempty,gt=0"`
}
