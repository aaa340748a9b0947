package ai

import (
	"context"
	"fmt"
	"strings"

	"mietlink_backend/internal/algorithms"

	"github.com/shopspring/decimal"
)

const (
	StaticConfidence = 0.95
	StaticReason     = "Document accepted"
	// StaticDaysBeforeExit - срок для задачи по обязательству без модели
	StaticDaysBeforeExit = 14
)

// Static - детерминированная замена модели для локальной разработки и тестов
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (Static) Validate(ctx context.Context, in DocumentInput) (Verdict, error) {
	return Verdict{Valid: true, Confidence: StaticConfidence, Reason: StaticReason, DetectedType: in.TypeHint}, nil
}

func (Static) ParseContract(ctx context.Context, text string) (ContractTerms, error) {
	return ContractTerms{RentChf: decimal.Zero, NoticeMonths: 3, KeyCount: 1, Obligations: []string{}}, nil
}

func (Static) GenerateTasks(ctx context.Context, obligations []string) ([]algorithms.TaskSpec, error) {
	specs := make([]algorithms.TaskSpec, 0, len(obligations))
	for _, o := range obligations {
		specs = append(specs, algorithms.TaskSpec{Title: o, DaysBeforeExit: StaticDaysBeforeExit})
	}
	return specs, nil
}

var coverLetterTemplates = map[string]string{
	"de": "Sehr geehrte Damen und Herren\n\nMit grossem Interesse bewerbe ich mich für die Wohnung an der %s. Mein vollständiges Dossier liegt bei, ich freue mich auf eine Besichtigung.\n\nFreundliche Grüsse\n%s",
	"fr": "Madame, Monsieur,\n\nC'est avec un grand intérêt que je postule pour l'appartement situé %s. Mon dossier complet est joint, je me réjouis d'une visite.\n\nMeilleures salutations\n%s",
	"it": "Gentili Signore e Signori\n\nCon grande interesse mi candido per l'appartamento in %s. Allego il mio dossier completo e sarei lieto di una visita.\n\nCordiali saluti\n%s",
	"en": "Dear Sir or Madam\n\nI am very interested in the apartment at %s. My complete application dossier is attached and I would be glad to arrange a viewing.\n\nKind regards\n%s",
}

func (Static) CoverLetter(ctx context.Context, applicant ApplicantProfile, property PropertySummary, language string) (string, error) {
	tmpl, ok := coverLetterTemplates[language]
	if !ok {
		tmpl = coverLetterTemplates["de"]
	}
	return fmt.Sprintf(tmpl, property.Address, applicant.Name), nil
}

func (Static) ExplainScore(ctx context.Context, facts ScoreFacts) (string, error) {
	if facts.RequiredTotal == 0 {
		return fmt.Sprintf("Score %d: no documents are required for this property.", facts.Score), nil
	}
	return fmt.Sprintf("Score %d (%s): %d of %d required documents are valid, %s.",
		facts.Score, facts.Tier, facts.ValidRequired, facts.RequiredTotal, facts.Reason), nil
}

func (Static) RegieEmail(ctx context.Context, candidates []RegieCandidate, language string) (string, string, error) {
	var b strings.Builder
	b.WriteString("Anbei finden Sie die drei besten Kandidaten.\n\n")
	b.WriteString("| # | Name | Score | Status |\n|---|---|---|---|\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "| %d | %s | %d | %s |\n", i+1, c.Name, c.Score, c.Tier)
	}
	return "Top 3 Kandidaten für Ihre Wohnung", b.String(), nil
}
