package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alirezadp10/ezapply/internal/model"
)

// Interactor is the page surface the filler drives. The browser session
// satisfies it.
type Interactor interface {
	SendKeys(ctx context.Context, sel, text string) error
	Eval(ctx context.Context, js string, out any) error
}

// Filler writes answers into wizard widgets.
type Filler struct {
	page Interactor
}

func NewFiller(page Interactor) *Filler {
	return &Filler{page: page}
}

// Fill types or clicks the answer into the widget described by field.
func (f *Filler) Fill(ctx context.Context, field model.FormField, answer string) error {
	switch field.Kind {
	case model.FieldText, model.FieldTextarea:
		return f.fillText(ctx, field, answer)
	case model.FieldSelect:
		return f.selectOption(ctx, field, answer)
	case model.FieldRadio:
		return f.pickChoice(ctx, field, answer, `input[type="radio"]`)
	case model.FieldCheckbox:
		return f.pickChoice(ctx, field, answer, `input[type="checkbox"]`)
	default:
		return &model.UnsupportedFieldError{Label: field.Label, Kind: string(field.Kind)}
	}
}

func (f *Filler) fillText(ctx context.Context, field model.FormField, answer string) error {
	if field.ID == "" {
		return &model.UnsupportedFieldError{Label: field.Label, Kind: string(field.Kind)}
	}
	return f.page.SendKeys(ctx, `[id=`+strconv.Quote(field.ID)+`]`, answer)
}

// selectOption matches the answer against option text first, option value
// second, and fires a change event so the page's listeners run.
func (f *Filler) selectOption(ctx context.Context, field model.FormField, answer string) error {
	js := fmt.Sprintf(`(() => {
	const el = document.getElementById(%s);
	if (!el) return false;
	const want = %s.trim().toLowerCase();
	for (const opt of el.options) {
		if (opt.text.trim().toLowerCase() === want || opt.value.toLowerCase() === want) {
			el.value = opt.value;
			el.dispatchEvent(new Event('change', {bubbles: true}));
			return true;
		}
	}
	return false;
})()`, strconv.Quote(field.ID), strconv.Quote(answer))
	return f.evalPick(ctx, field, answer, js)
}

// pickChoice clicks the label of the option whose text matches the answer.
// Checkbox answers may name several options separated by commas.
func (f *Filler) pickChoice(ctx context.Context, field model.FormField, answer, inputSel string) error {
	js := fmt.Sprintf(`(() => {
	const fs = document.getElementById(%s);
	if (!fs) return false;
	const wanted = %s.split(',').map(s => s.trim().toLowerCase()).filter(s => s);
	let hit = false;
	for (const input of fs.querySelectorAll(%s)) {
		const label = fs.querySelector('label[for="' + input.id + '"]');
		const text = (label ? label.textContent : input.value).trim().toLowerCase();
		if (wanted.some(w => text.includes(w))) {
			(label || input).click();
			hit = true;
		}
	}
	return hit;
})()`, strconv.Quote(field.ID), strconv.Quote(answer), strconv.Quote(inputSel))
	return f.evalPick(ctx, field, answer, js)
}

func (f *Filler) evalPick(ctx context.Context, field model.FormField, answer, js string) error {
	var ok bool
	if err := f.page.Eval(ctx, js, &ok); err != nil {
		return err
	}
	if !ok {
		return &model.SubmissionError{
			Reason: fmt.Sprintf("no option matching %q for %q", answer, firstNonEmpty(field.Label, field.ID)),
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
