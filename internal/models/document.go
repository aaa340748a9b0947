package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentType - закрытое перечисление типов документов досье.
type DocumentType string

const (
	DocumentTypeIdentity        DocumentType = "identity"
	DocumentTypeResidencePermit DocumentType = "residence_permit"
	DocumentTypeDebtExtract     DocumentType = "debt_extract"
	DocumentTypeIncomeProof     DocumentType = "income_proof"
	DocumentTypeLease           DocumentType = "lease"
)

// AllDocumentTypes lists the canonical types in display order.
var AllDocumentTypes = []DocumentType{
	DocumentTypeIdentity,
	DocumentTypeResidencePermit,
	DocumentTypeDebtExtract,
	DocumentTypeIncomeProof,
	DocumentTypeLease,
}

// legacy short names still sent by older clients and by the classifier
var documentTypeAliases = map[string]DocumentType{
	"id":         DocumentTypeIdentity,
	"permit":     DocumentTypeResidencePermit,
	"income":     DocumentTypeIncomeProof,
	"debt":       DocumentTypeDebtExtract,
	"betreibung": DocumentTypeDebtExtract,
}

// ParseDocumentType maps raw input (canonical names or aliases, any case)
// onto the enumeration. Unknown values are an error.
func ParseDocumentType(raw string) (DocumentType, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, "-", "_")
	for _, t := range AllDocumentTypes {
		if string(t) == v {
			return t, nil
		}
	}
	if t, ok := documentTypeAliases[v]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown document type %q", raw)
}

func (t DocumentType) Valid() bool {
	_, err := ParseDocumentType(string(t))
	return err == nil && t != ""
}

type Document struct {
	ID               string       `gorm:"primaryKey;size:36" json:"id"`
	UserID           string       `gorm:"size:36;not null;index:idx_documents_user_property" json:"user_id"`
	PropertyID       *string      `gorm:"size:36;index:idx_documents_user_property" json:"property_id,omitempty"`
	Type             DocumentType `gorm:"type:varchar(32);not null" json:"type"`
	URL              string       `gorm:"not null" json:"url"`
	StorageKey       string       `json:"-"`
	Filename         string       `json:"filename"`
	MimeType         string       `gorm:"size:100" json:"mime_type"`
	SizeBytes        int64        `json:"size_bytes"`
	IsValid          bool         `gorm:"not null;default:false" json:"is_valid"`
	Confidence       float64      `gorm:"not null;default:0" json:"confidence"`
	ValidationReason string       `json:"validation_reason"`
	CreatedAt        time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
