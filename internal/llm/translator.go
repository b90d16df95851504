package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

type translationInput struct {
	Locale     models.Locale
	Content    string
	Corrective string
	Previous   string
}

var scriptNotes = map[models.Locale]string{
	models.LocaleArabic: "",
	models.LocaleHindi:  " Use Devanagari script.",
	models.LocaleHebrew: "",
}

// Translator renders the formatted summary into a target locale, one
// completion call per locale, with the numeric-preservation contract
// enforced after each call.
type Translator struct {
	chain compose.Runnable[translationInput, *schema.Message]
	log   *logrus.Entry
}

func NewTranslator(ctx context.Context, cm model.BaseChatModel, log *logrus.Entry) (*Translator, error) {
	chain := compose.NewChain[translationInput, *schema.Message]()
	chain.AppendLambda(compose.InvokableLambda(buildTranslationMessages))
	chain.AppendChatModel(cm)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile translator chain: %w", err)
	}

	return &Translator{chain: runnable, log: log}, nil
}

func buildTranslationMessages(ctx context.Context, in translationInput) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage("You are an expert {language} translator with deep understanding of financial terminology. Translate financial content to {language} while keeping HTML tags and numbers unchanged.{script_note}"),
		schema.UserMessage("Translate this financial summary to {language}. Keep all HTML tags (<b>, <i>, <a>) exactly the same. Keep all numbers, percentages, and company names unchanged. Respond with only the translated text.\n\n{content}"),
	)

	messages, err := tpl.Format(ctx, map[string]any{
		"language":    in.Locale.Name(),
		"script_note": scriptNotes[in.Locale],
		"content":     in.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("format translation prompt: %w", err)
	}

	if in.Corrective != "" {
		messages = append(messages,
			schema.AssistantMessage(in.Previous, nil),
			schema.UserMessage(in.Corrective),
		)
	}

	return messages, nil
}

// Translate produces the locale's rendering. Numeric corruption triggers one
// corrective retry; a second violation is a ValidationError and the caller
// substitutes the fallback notice.
func (t *Translator) Translate(ctx context.Context, locale models.Locale, content models.FormattedContent) (models.FormattedContent, error) {
	in := translationInput{Locale: locale, Content: content.HTMLBody}

	resp, err := t.chain.Invoke(ctx, in)
	if err != nil {
		return models.FormattedContent{}, &fault.TransportError{Op: "translation " + string(locale), Err: err}
	}

	translated := strings.TrimSpace(resp.Content)
	missing := missingNumbers(content.HTMLBody, translated)
	if translated != "" && len(missing) == 0 {
		return models.FormattedContent{HTMLBody: translated, Charts: content.Charts}, nil
	}

	if translated == "" {
		t.log.WithField("locale", locale).Warn("translation came back empty, retrying with correction")
		in.Corrective = "Your previous response was empty. Translate the summary now, " +
			"keeping every number exactly as written in the source."
	} else {
		t.log.WithField("locale", locale).Warnf("translation altered numerals %v, retrying with correction", missing)
		in.Corrective = fmt.Sprintf(
			"Your previous translation altered or dropped these numeric values: %s. "+
				"Translate the summary again, keeping every number exactly as written in the source.",
			strings.Join(missing, ", "))
	}
	in.Previous = resp.Content

	resp2, err := t.chain.Invoke(ctx, in)
	if err != nil {
		return models.FormattedContent{}, &fault.TransportError{Op: "translation " + string(locale), Err: err}
	}

	translated = strings.TrimSpace(resp2.Content)
	missing = missingNumbers(content.HTMLBody, translated)
	if translated == "" {
		return models.FormattedContent{}, &fault.ValidationError{
			Stage:  "translation " + string(locale),
			Reason: "empty translation",
		}
	}
	if len(missing) > 0 {
		return models.FormattedContent{}, &fault.ValidationError{
			Stage:  "translation " + string(locale),
			Reason: fmt.Sprintf("numerals not preserved: %s", strings.Join(missing, ", ")),
		}
	}

	return models.FormattedContent{HTMLBody: translated, Charts: content.Charts}, nil
}

var fallbackHeaders = map[models.Locale]string{
	models.LocaleArabic: "ملخص مالي يومي",
	models.LocaleHindi:  "दैनिक वित्तीय सारांश",
	models.LocaleHebrew: "סיכום פיננסי יומי",
}

var fallbackNotes = map[models.Locale]string{
	models.LocaleArabic: "ملاحظة: الترجمة الآلية قد تحتوي على أخطاء. يرجى الرجوع إلى النسخة الإنجليزية للحصول على معلومات دقيقة.",
	models.LocaleHindi:  "नोट: मशीनी अनुवाद में त्रुटियां हो सकती हैं। सटीक जानकारी के लिए कृपया अंग्रेजी संस्करण देखें।",
	models.LocaleHebrew: "הערה: תרגום אוטומטי עלול להכיל שגיאות. אנא עיינו בגרסה האנגלית למידע מדויק.",
}

// Fallback is the degraded per-locale output substituted when translation
// fails: a localized notice pointing at the English message.
func (t *Translator) Fallback(locale models.Locale) models.FormattedContent {
	header := fallbackHeaders[locale]
	if header == "" {
		header = locale.Name() + " Translation"
	}
	note := fallbackNotes[locale]
	if note == "" {
		note = "Note: Automatic translation may contain errors. Please refer to the English version for accurate information."
	}

	body := fmt.Sprintf("<b>%s</b>\n\n%s\n\n<i>Original English content available in previous message</i>", header, note)
	return models.FormattedContent{HTMLBody: body, Degraded: true}
}
