package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

const sourceHTML = "<b>Daily US Financial Summary</b>\n• S&P 500: 6460.26 (+0.64%)\n• NVDA +3.2% on demand"

func sourceContent() models.FormattedContent {
	return models.FormattedContent{HTMLBody: sourceHTML}
}

func TestTranslatePreservesNumeralsAcrossLocales(t *testing.T) {
	for _, locale := range models.TargetLocales() {
		// Echoing the source back keeps every numeral; the check must pass.
		fake := &fakeChatModel{responses: []string{"ترجمة: " + sourceHTML}}
		tr, err := NewTranslator(context.Background(), fake, testEntry())
		if err != nil {
			t.Fatalf("NewTranslator: %v", err)
		}

		out, err := tr.Translate(context.Background(), locale, sourceContent())
		if err != nil {
			t.Fatalf("Translate %s: %v", locale, err)
		}
		for _, numeral := range []string{"6460.26", "0.64", "3.2"} {
			if !strings.Contains(out.HTMLBody, numeral) {
				t.Fatalf("locale %s lost numeral %s", locale, numeral)
			}
		}
		if fake.calls != 1 {
			t.Fatalf("expected one call for clean translation, got %d", fake.calls)
		}
	}
}

func TestTranslateRetriesThenFailsOnNumericCorruption(t *testing.T) {
	// Both attempts drop the index level entirely.
	fake := &fakeChatModel{responses: []string{"ارتفع السوق اليوم", "ارتفع السوق بشكل جيد"}}
	tr, err := NewTranslator(context.Background(), fake, testEntry())
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	_, err = tr.Translate(context.Background(), models.LocaleArabic, sourceContent())
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fake.calls != 2 {
		t.Fatalf("expected exactly one corrective retry, got %d calls", fake.calls)
	}
}

func TestTranslateCorrectiveRetryCanRecover(t *testing.T) {
	fake := &fakeChatModel{responses: []string{"bad: no numbers", "good: S&P 500 at 6460.26, 0.64 and 3.2 kept"}}
	tr, err := NewTranslator(context.Background(), fake, testEntry())
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	out, err := tr.Translate(context.Background(), models.LocaleHindi, sourceContent())
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(out.HTMLBody, "6460.26") {
		t.Fatalf("recovered translation lost numerals: %q", out.HTMLBody)
	}
	if fake.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", fake.calls)
	}
}

func TestTranslateEmptyResponseGetsOwnCorrection(t *testing.T) {
	fake := &fakeChatModel{responses: []string{"", "ok: S&P 500 at 6460.26, 0.64 and 3.2"}}
	tr, err := NewTranslator(context.Background(), fake, testEntry())
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	out, err := tr.Translate(context.Background(), models.LocaleArabic, sourceContent())
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(out.HTMLBody, "6460.26") {
		t.Fatalf("recovered translation lost numerals: %q", out.HTMLBody)
	}

	if len(fake.inputs) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(fake.inputs))
	}
	second := fake.inputs[1]
	corrective := second[len(second)-1].Content
	if !strings.Contains(corrective, "empty") {
		t.Fatalf("empty response must get the empty-response correction, got %q", corrective)
	}
	if strings.Contains(corrective, "altered or dropped these numeric values") {
		t.Fatalf("empty response must not use the numeral correction, got %q", corrective)
	}
}

func TestTranslateEmptyTwiceIsValidationError(t *testing.T) {
	fake := &fakeChatModel{responses: []string{"", "   "}}
	tr, err := NewTranslator(context.Background(), fake, testEntry())
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	_, err = tr.Translate(context.Background(), models.LocaleHebrew, sourceContent())
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Reason != "empty translation" {
		t.Fatalf("expected empty-translation reason, got %q", ve.Reason)
	}
}

func TestTranslateWrapsTransportFailures(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("timeout")}
	tr, err := NewTranslator(context.Background(), fake, testEntry())
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	_, err = tr.Translate(context.Background(), models.LocaleHebrew, sourceContent())
	var te *fault.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFallbackIsLocalizedAndDegraded(t *testing.T) {
	tr := &Translator{log: testEntry()}

	for locale, header := range fallbackHeaders {
		fb := tr.Fallback(locale)
		if !fb.Degraded {
			t.Fatalf("fallback for %s must be marked degraded", locale)
		}
		if !strings.Contains(fb.HTMLBody, header) {
			t.Fatalf("fallback for %s missing localized header", locale)
		}
		if !strings.Contains(fb.HTMLBody, "English") {
			t.Fatalf("fallback for %s must point at the English message", locale)
		}
	}
}

func TestNumericTokens(t *testing.T) {
	tokens := numericTokens("S&P 500 at 6460.26, up 0.64% — 500 points range")
	want := []string{"500", "6460.26", "0.64"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], tokens[i])
		}
	}
}

func TestMissingNumbers(t *testing.T) {
	missing := missingNumbers("up 0.64% to 6460.26", "עלה ב-0.64% היום")
	if len(missing) != 1 || missing[0] != "6460.26" {
		t.Fatalf("expected [6460.26], got %v", missing)
	}
}
