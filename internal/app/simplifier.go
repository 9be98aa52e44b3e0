package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"spillthepill/internal/domain"
)

// Mode selects how simplify presents drug information.
type Mode string

const (
	ModeSimplified Mode = "simplified"
	ModeRegular    Mode = "regular"
)

// ParseMode resolves the "model" query value. Empty means simplified.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSimplified:
		return ModeSimplified, nil
	case ModeRegular:
		return ModeRegular, nil
	default:
		return "", domain.Invalid("Unknown model %q, expected simplified or regular", s)
	}
}

const assistantSystemPrompt = "You are a helpful and friendly medical assistant."

var prompts = map[Mode]*template.Template{
	ModeSimplified: template.Must(template.New("simplified").Parse(
		`Simplify this medical info in friendly, non-technical English.
Add a helpful tip and a common mistake to avoid.
{{- if not .HasContent}}
Fill in any N/A field from general medical knowledge.
{{- end}}

Name: {{.Name}}
Use: {{or .Uses "N/A"}}
Dose: {{or .Dosage "N/A"}}
Side Effects: {{or .SideEffects "N/A"}}
Warnings: {{or .Warnings "N/A"}}
`)),
	ModeRegular: template.Must(template.New("regular").Parse(
		`Give a complete, well-structured summary of this medicine for a patient.
Keep the medical terms but explain each one briefly.
Cover what it is used for, how to take it, side effects and warnings.
{{- if not .HasContent}}
Fill in any N/A field from general medical knowledge.
{{- end}}

Name: {{.Name}}
Use: {{or .Uses "N/A"}}
Dose: {{or .Dosage "N/A"}}
Side Effects: {{or .SideEffects "N/A"}}
Warnings: {{or .Warnings "N/A"}}
`)),
}

var fallbackTemplate = template.Must(template.New("fallback").Parse(
	`{{.Name}}

What it is for: {{or .Uses "No information available."}}
How to take it: {{or .Dosage "No information available."}}
Possible side effects: {{or .SideEffects "No information available."}}
Warnings: {{or .Warnings "No information available."}}

Tip: Always read the label and follow your doctor's or pharmacist's instructions.
Common mistake to avoid: Do not take more than the recommended dose or combine it with other medicines without advice.
`))

// phrasebooks replace the fixed sentences of fallbackTemplate when the
// translation pass fails.
var phrasebooks = map[string]*strings.Replacer{
	"es": strings.NewReplacer(
		"What it is for:", "Para qué sirve:",
		"How to take it:", "Cómo tomarlo:",
		"Possible side effects:", "Posibles efectos secundarios:",
		"Warnings:", "Advertencias:",
		"Common mistake to avoid:", "Error común que debe evitar:",
		"Tip:", "Consejo:",
		"Always read the label and follow your doctor's or pharmacist's instructions.", "Lea siempre la etiqueta y siga las indicaciones de su médico o farmacéutico.",
		"Do not take more than the recommended dose or combine it with other medicines without advice.", "No tome más de la dosis recomendada ni lo combine con otros medicamentos sin consultar.",
		"No information available.", "No hay información disponible.",
	),
	"fr": strings.NewReplacer(
		"What it is for:", "À quoi il sert :",
		"How to take it:", "Comment le prendre :",
		"Possible side effects:", "Effets secondaires possibles :",
		"Warnings:", "Avertissements :",
		"Common mistake to avoid:", "Erreur courante à éviter :",
		"Tip:", "Conseil :",
		"Always read the label and follow your doctor's or pharmacist's instructions.", "Lisez toujours la notice et suivez les instructions de votre médecin ou pharmacien.",
		"Do not take more than the recommended dose or combine it with other medicines without advice.", "Ne dépassez pas la dose recommandée et ne l'associez pas à d'autres médicaments sans avis.",
		"No information available.", "Aucune information disponible.",
	),
	"hi": strings.NewReplacer(
		"What it is for:", "यह किस लिए है:",
		"How to take it:", "इसे कैसे लें:",
		"Possible side effects:", "संभावित दुष्प्रभाव:",
		"Warnings:", "चेतावनी:",
		"Common mistake to avoid:", "आम गलती जिससे बचें:",
		"Tip:", "सुझाव:",
		"Always read the label and follow your doctor's or pharmacist's instructions.", "हमेशा लेबल पढ़ें और अपने डॉक्टर या फार्मासिस्ट के निर्देशों का पालन करें।",
		"Do not take more than the recommended dose or combine it with other medicines without advice.", "अनुशंसित खुराक से अधिक न लें और बिना सलाह के अन्य दवाओं के साथ न मिलाएं।",
		"No information available.", "कोई जानकारी उपलब्ध नहीं है।",
	),
}

// SimplifyOptions controls one simplify call.
type SimplifyOptions struct {
	Mode     Mode
	Language domain.Language
}

// Simplified is the outcome of a simplify call. Fallback is set when canned
// content replaced a failed model call.
type Simplified struct {
	Text     string
	Mode     Mode
	Language domain.Language
	Fallback bool
}

// Simplifier turns drug records into plain-language text with a chat model
// and translates the result on a second pass.
type Simplifier struct {
	llm       domain.ChatCompleter
	maxTokens int
	log       *slog.Logger
}

func NewSimplifier(llm domain.ChatCompleter, maxTokens int, log *slog.Logger) *Simplifier {
	return &Simplifier{llm: llm, maxTokens: maxTokens, log: log}
}

// Simplify rewrites info for opts.Mode and translates it to opts.Language.
// When the model fails and info has content, a fixed template is returned
// instead. It fails only when there is nothing to fall back on.
func (s *Simplifier) Simplify(ctx context.Context, info domain.DrugInfo, opts SimplifyOptions) (*Simplified, error) {
	if opts.Mode == "" {
		opts.Mode = ModeSimplified
	}
	if opts.Language.Code == "" {
		opts.Language = domain.English
	}

	prompt, err := render(prompts[opts.Mode], info)
	if err != nil {
		return nil, err
	}

	text, err := s.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: assistantSystemPrompt},
		{Role: domain.RoleUser, Content: prompt},
	}, s.maxTokens)
	if err != nil {
		s.log.WarnContext(ctx, "simplify failed", "drug", info.Name, "error", err)
		if !info.HasContent() {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return s.fallback(info, opts)
	}

	out := &Simplified{Text: text, Mode: opts.Mode, Language: domain.English}
	if opts.Language.IsEnglish() {
		return out, nil
	}

	translated, err := s.Translate(ctx, text, opts.Language)
	if err != nil {
		s.log.WarnContext(ctx, "translate failed", "language", opts.Language.Code, "error", err)
		if _, ok := phrasebooks[opts.Language.Code]; ok && info.HasContent() {
			return s.fallback(info, opts)
		}
		out.Fallback = true
		return out, nil
	}

	out.Text = translated
	out.Language = opts.Language
	return out, nil
}

// Translate asks the model to translate text into lang.
func (s *Simplifier) Translate(ctx context.Context, text string, lang domain.Language) (string, error) {
	return s.llm.Complete(ctx, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "You are a professional medical translator."},
		{Role: domain.RoleUser, Content: fmt.Sprintf(
			"Translate the following text into %s. Keep the formatting and do not add anything.\n\n%s",
			lang.Name, text)},
	}, s.maxTokens)
}

func (s *Simplifier) fallback(info domain.DrugInfo, opts SimplifyOptions) (*Simplified, error) {
	text, err := render(fallbackTemplate, info)
	if err != nil {
		return nil, err
	}
	lang := domain.English
	if r, ok := phrasebooks[opts.Language.Code]; ok {
		text = r.Replace(text)
		lang = opts.Language
	}
	return &Simplified{Text: text, Mode: opts.Mode, Language: lang, Fallback: true}, nil
}

func render(t *template.Template, info domain.DrugInfo) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, info); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
