package dto

// UploadDocumentRequest - поля multipart-формы кроме самого файла
type UploadDocumentRequest struct {
	Type       string `form:"type" json:"type" validate:"required,is-document-type"`
	PropertyID string `form:"property_id" json:"property_id" validate:"omitempty,max=36"`
}

// UploadedFile - содержимое файла, прочитанное хендлером
type UploadedFile struct {
	Filename string
	MimeType string
	Data     []byte
}
