package entity

type Ticket struct {
	Base
	SeminarID int64  `db:"seminar_id"`
	StudentID int64  `db:"student_id"`
	QRContent string `db:"qr_content"`
	QRPath    string `db:"qr_path"`
	Active    bool   `db:"active"`
}
