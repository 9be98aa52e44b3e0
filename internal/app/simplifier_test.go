package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spillthepill/internal/domain"
	"spillthepill/internal/logging"
)

type mockLLM struct {
	calls      [][]domain.ChatMessage
	completeFn func(call int, msgs []domain.ChatMessage) (string, error)
}

func (m *mockLLM) Complete(_ context.Context, msgs []domain.ChatMessage, _ int) (string, error) {
	call := len(m.calls)
	m.calls = append(m.calls, msgs)
	if m.completeFn != nil {
		return m.completeFn(call, msgs)
	}
	return "ok", nil
}

var ibuprofen = domain.DrugInfo{Name: "Ibuprofen", Uses: "pain relief", Warnings: "stomach bleeding"}

func spanish(t *testing.T) domain.Language {
	t.Helper()
	l, ok := domain.ParseLanguage("es")
	if !ok {
		t.Fatal("es not known")
	}
	return l
}

func TestSimplifier_English(t *testing.T) {
	llm := &mockLLM{completeFn: func(int, []domain.ChatMessage) (string, error) { return "Ibuprofen eases pain.", nil }}
	s := NewSimplifier(llm, 500, logging.Nop())

	out, err := s.Simplify(context.Background(), ibuprofen, SimplifyOptions{})
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if out.Text != "Ibuprofen eases pain." || out.Fallback || out.Mode != ModeSimplified || !out.Language.IsEnglish() {
		t.Fatalf("unexpected result %+v", out)
	}
	if len(llm.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(llm.calls))
	}

	msgs := llm.calls[0]
	if msgs[0].Role != domain.RoleSystem || msgs[0].Content != assistantSystemPrompt {
		t.Errorf("unexpected system message %+v", msgs[0])
	}
	prompt := msgs[1].Content
	for _, want := range []string{
		"Simplify this medical info in friendly, non-technical English.",
		"Name: Ibuprofen",
		"Use: pain relief",
		"Dose: N/A",
		"Warnings: stomach bleeding",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Fill in any N/A") {
		t.Error("prompt asks to fill in although content exists")
	}
}

func TestSimplifier_PlaceholderAndRegular(t *testing.T) {
	llm := &mockLLM{}
	s := NewSimplifier(llm, 500, logging.Nop())

	_, err := s.Simplify(context.Background(), domain.DrugInfo{Name: "Zyrtec"}, SimplifyOptions{Mode: ModeRegular})
	if err != nil {
		t.Fatal(err)
	}
	prompt := llm.calls[0][1].Content
	if !strings.Contains(prompt, "complete, well-structured summary") || !strings.Contains(prompt, "Fill in any N/A") {
		t.Fatalf("unexpected prompt:\n%s", prompt)
	}
}

func TestSimplifier_Translates(t *testing.T) {
	llm := &mockLLM{completeFn: func(call int, _ []domain.ChatMessage) (string, error) {
		if call == 0 {
			return "Eases pain.", nil
		}
		return "Alivia el dolor.", nil
	}}
	s := NewSimplifier(llm, 500, logging.Nop())

	out, err := s.Simplify(context.Background(), ibuprofen, SimplifyOptions{Language: spanish(t)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "Alivia el dolor." || out.Language.Code != "es" || out.Fallback {
		t.Fatalf("unexpected result %+v", out)
	}
	if !strings.Contains(llm.calls[1][1].Content, "into Spanish") || !strings.Contains(llm.calls[1][1].Content, "Eases pain.") {
		t.Errorf("unexpected translate prompt %q", llm.calls[1][1].Content)
	}
}

func TestSimplifier_Fallbacks(t *testing.T) {
	boom := errors.New("upstream down")
	german, _ := domain.ParseLanguage("de")

	t.Run("simplify fails with content", func(t *testing.T) {
		s := NewSimplifier(&mockLLM{completeFn: func(int, []domain.ChatMessage) (string, error) { return "", boom }}, 500, logging.Nop())
		out, err := s.Simplify(context.Background(), ibuprofen, SimplifyOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !out.Fallback || !strings.Contains(out.Text, "What it is for: pain relief") || !strings.Contains(out.Text, "How to take it: No information available.") {
			t.Fatalf("unexpected fallback %+v", out)
		}
	})

	t.Run("simplify fails without content", func(t *testing.T) {
		s := NewSimplifier(&mockLLM{completeFn: func(int, []domain.ChatMessage) (string, error) { return "", boom }}, 500, logging.Nop())
		_, err := s.Simplify(context.Background(), domain.DrugInfo{Name: "Zyrtec"}, SimplifyOptions{})
		if !errors.Is(err, domain.ErrLLMUnavailable) || !errors.Is(err, boom) {
			t.Fatalf("expected ErrLLMUnavailable wrapping cause, got %v", err)
		}
		if domain.KindOf(err) != domain.KindUpstream {
			t.Errorf("expected upstream kind, got %v", domain.KindOf(err))
		}
	})

	t.Run("translate fails with phrasebook", func(t *testing.T) {
		s := NewSimplifier(&mockLLM{completeFn: func(call int, _ []domain.ChatMessage) (string, error) {
			if call == 0 {
				return "Eases pain.", nil
			}
			return "", boom
		}}, 500, logging.Nop())
		out, err := s.Simplify(context.Background(), ibuprofen, SimplifyOptions{Language: spanish(t)})
		if err != nil {
			t.Fatal(err)
		}
		if !out.Fallback || out.Language.Code != "es" {
			t.Fatalf("unexpected result %+v", out)
		}
		for _, want := range []string{"Para qué sirve: pain relief", "Advertencias: stomach bleeding", "Consejo:"} {
			if !strings.Contains(out.Text, want) {
				t.Errorf("fallback missing %q:\n%s", want, out.Text)
			}
		}
	})

	t.Run("translate fails without phrasebook", func(t *testing.T) {
		s := NewSimplifier(&mockLLM{completeFn: func(call int, _ []domain.ChatMessage) (string, error) {
			if call == 0 {
				return "Eases pain.", nil
			}
			return "", boom
		}}, 500, logging.Nop())
		out, err := s.Simplify(context.Background(), ibuprofen, SimplifyOptions{Language: german})
		if err != nil {
			t.Fatal(err)
		}
		if !out.Fallback || out.Text != "Eases pain." || !out.Language.IsEnglish() {
			t.Fatalf("unexpected result %+v", out)
		}
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeSimplified, false},
		{"simplified", ModeSimplified, false},
		{"Regular", ModeRegular, false},
		{"gpt-4", "", true},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseMode(%q) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
