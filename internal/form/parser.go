// Package form extracts unanswered questions from the quick-apply wizard
// and writes answers back into the page.
package form

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alirezadp10/ezapply/internal/model"
)

const selModal = "div[data-test-modal]"

// textInputTypes are the input types handled as free-text fields. Anything
// else that is not a file picker is reported as unsupported.
var textInputTypes = map[string]bool{
	"":       true,
	"text":   true,
	"email":  true,
	"tel":    true,
	"number": true,
	"date":   true,
	"url":    true,
	"search": true,
}

const selectPlaceholder = "select an option"

// ParseStep returns the fields on the current wizard step that still need an
// answer. Pre-filled widgets are skipped so a step the site auto-completed
// from the member profile parses as empty.
func ParseStep(html string) ([]model.FormField, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	root := doc.Find(selModal + " form").First()
	if root.Length() == 0 {
		root = doc.Find(selModal).First()
	}
	if root.Length() == 0 {
		return nil, nil
	}

	var (
		fields []model.FormField
		seen   = make(map[string]bool)
	)
	add := func(f model.FormField) {
		key := f.Key()
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		fields = append(fields, f)
	}

	var unsupported error
	root.Find("input").Each(func(_ int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		typ = strings.ToLower(typ)
		switch typ {
		case "radio", "checkbox", "hidden", "submit", "button":
			return
		}
		if val, _ := s.Attr("value"); strings.TrimSpace(val) != "" {
			return
		}
		id, _ := s.Attr("id")
		label := fieldLabel(root, s, id)
		switch {
		case typ == "file":
			add(model.FormField{ID: id, Label: label, Kind: model.FieldFile})
		case textInputTypes[typ]:
			add(model.FormField{ID: id, Label: label, Kind: model.FieldText})
		default:
			if unsupported == nil {
				unsupported = &model.UnsupportedFieldError{Label: label, Kind: typ}
			}
		}
	})
	if unsupported != nil {
		return nil, unsupported
	}

	root.Find("select").Each(func(_ int, s *goquery.Selection) {
		selected := strings.TrimSpace(s.Find("option[selected]").First().Text())
		if selected != "" && !strings.EqualFold(selected, selectPlaceholder) {
			return
		}
		id, _ := s.Attr("id")
		var opts []string
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			text := strings.TrimSpace(o.Text())
			if text == "" || strings.EqualFold(text, selectPlaceholder) {
				return
			}
			opts = append(opts, text)
		})
		add(model.FormField{ID: id, Label: fieldLabel(root, s, id), Kind: model.FieldSelect, Options: opts})
	})

	root.Find("textarea").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) != "" {
			return
		}
		id, _ := s.Attr("id")
		add(model.FormField{ID: id, Label: fieldLabel(root, s, id), Kind: model.FieldTextarea})
	})

	root.Find("fieldset").Each(func(_ int, fs *goquery.Selection) {
		kind, inputSel := fieldsetKind(fs)
		if kind == "" {
			return
		}
		if fs.Find(inputSel + "[checked]").Length() > 0 {
			return
		}
		id, _ := fs.Attr("id")
		label := CleanLabel(fs.Find("legend").First().Text())
		if label == "" {
			label, _ = fs.Attr("aria-label")
			label = CleanLabel(label)
		}
		var opts []string
		fs.Find(inputSel).Each(func(_ int, in *goquery.Selection) {
			inID, _ := in.Attr("id")
			text := strings.TrimSpace(fs.Find(`label[for="` + inID + `"]`).First().Text())
			if text == "" {
				text, _ = in.Attr("value")
			}
			if text != "" {
				opts = append(opts, CleanLabel(text))
			}
		})
		add(model.FormField{ID: id, Label: label, Kind: kind, Options: opts})
	})

	return fields, nil
}

func fieldsetKind(fs *goquery.Selection) (model.FieldKind, string) {
	if v, ok := fs.Attr("data-test-checkbox-form-component"); ok && v == "true" {
		return model.FieldCheckbox, `input[type="checkbox"]`
	}
	if fs.Find(`input[type="checkbox"]`).Length() > 0 {
		return model.FieldCheckbox, `input[type="checkbox"]`
	}
	if fs.Find(`input[type="radio"]`).Length() > 0 {
		return model.FieldRadio, `input[type="radio"]`
	}
	return "", ""
}

func fieldLabel(root, widget *goquery.Selection, id string) string {
	if id != "" {
		if text := root.Find(`label[for="` + id + `"]`).First().Text(); strings.TrimSpace(text) != "" {
			return CleanLabel(text)
		}
	}
	if aria, ok := widget.Attr("aria-label"); ok {
		return CleanLabel(aria)
	}
	if ph, ok := widget.Attr("placeholder"); ok {
		return CleanLabel(ph)
	}
	return ""
}
