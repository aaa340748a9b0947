package email

// Attachment - файл, приложенный к письму (например, PDF досье кандидата)
type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// Email - исходящее письмо. ReplyTo указывает на арендодателя,
// чтобы ответ регии уходил ему, а не на системный адрес.
type Email struct {
	From        string
	ReplyTo     string
	To          []string
	Cc          []string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}

func (e *Email) hasRecipients() bool {
	for _, to := range e.To {
		if to != "" {
			return true
		}
	}
	return false
}
