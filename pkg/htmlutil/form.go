package htmlutil

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrFormNotFound = errors.New("form not found")

// Form is the data a browser would submit for an html <form>, it starts out
// with the default values of every successful control and can then be
// modified before submission.
type Form struct {
	Action *url.URL
	// Method is always upper case, either GET or POST.
	Method string
	Values url.Values
}

// FindForm locates the first form matching selector in doc and collects its
// default values. page is the url the document was loaded from, it is used to
// resolve the form's action.
func FindForm(doc *goquery.Document, page *url.URL, selector string) (*Form, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, selector)
	}
	if goquery.NodeName(sel) != "form" {
		sel = sel.Closest("form")
		if sel.Length() == 0 {
			return nil, fmt.Errorf("%w: %s is not inside a form", ErrFormNotFound, selector)
		}
	}

	action := page
	if raw := strings.TrimSpace(sel.AttrOr("action", "")); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse form action %q: %w", raw, err)
		}
		if page != nil {
			parsed = page.ResolveReference(parsed)
		}
		action = parsed
	}
	if action == nil {
		return nil, fmt.Errorf("form %s has no action and no page url", selector)
	}

	method := strings.ToUpper(strings.TrimSpace(sel.AttrOr("method", "")))
	if method != http.MethodPost {
		method = http.MethodGet
	}

	return &Form{
		Action: action,
		Method: method,
		Values: formValues(sel),
	}, nil
}

func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, control *goquery.Selection) {
		if _, disabled := control.Attr("disabled"); disabled {
			return
		}
		name := control.AttrOr("name", "")

		switch goquery.NodeName(control) {
		case "textarea":
			values.Add(name, control.Text())
		case "select":
			options := control.Find("option[selected]")
			if options.Length() == 0 {
				if _, multiple := control.Attr("multiple"); multiple {
					return
				}
				options = control.Find("option").First()
			}
			options.Each(func(_ int, option *goquery.Selection) {
				values.Add(name, option.AttrOr("value", strings.TrimSpace(option.Text())))
			})
		default:
			switch strings.ToLower(control.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
			case "checkbox", "radio":
				if _, checked := control.Attr("checked"); checked {
					values.Add(name, control.AttrOr("value", "on"))
				}
			default:
				values.Add(name, control.AttrOr("value", ""))
			}
		}
	})
	return values
}

// Set replaces every value of the field name, the field does not need to
// exist in the original markup.
func (f *Form) Set(name, value string) {
	f.Values.Set(name, value)
}
