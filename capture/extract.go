package capture

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	linkTextLimit   = 100
	buttonTextLimit = 50
	unknown         = "unknown"
)

// LinkFields describes a clicked anchor. Relative hrefs are resolved against
// pageURL; a link is external when it does not start with the page origin.
func LinkFields(a Element, pageURL string) (download bool, fields map[string]any) {
	href := ResolveURL(pageURL, a.Attr("href"))
	return a.HasClass("download"), map[string]any{
		"url":         href,
		"text":        truncate(strings.TrimSpace(a.Text()), linkTextLimit),
		"file_name":   lastSegment(href),
		"is_external": !strings.HasPrefix(href, OriginOf(pageURL)),
		"target":      a.Attr("target"),
		"page_url":    pageURL,
	}
}

// ButtonFields describes a clicked button or role="button" element.
func ButtonFields(b Element, pageURL string) map[string]any {
	return map[string]any{
		"button_text": truncate(strings.TrimSpace(b.Text()), buttonTextLimit),
		"button_type": orUnknown(b.Attr("type")),
		"button_id":   orUnknown(b.ID()),
		"page_url":    pageURL,
	}
}

// ClickFields is the generic mouse click sample.
func ClickFields(c Click, pageURL string) map[string]any {
	fields := map[string]any{
		"x":             c.X,
		"y":             c.Y,
		"element":       "",
		"element_id":    nil,
		"element_class": nil,
		"page_url":      pageURL,
	}
	if c.Target == nil {
		return fields
	}
	fields["element"] = strings.ToLower(c.Target.TagName())
	if id := c.Target.ID(); id != "" {
		fields["element_id"] = id
	}
	if class := c.Target.ClassName(); class != "" {
		fields["element_class"] = class
	}
	return fields
}

// isListedElement reports whether el is one of the form's listed elements,
// the ones form.elements enumerates.
func isListedElement(el Element) bool {
	switch el.TagName() {
	case "BUTTON", "FIELDSET", "INPUT", "OBJECT", "OUTPUT", "SELECT", "TEXTAREA":
		return true
	}
	return false
}

// FormFields captures the structure of a submitted form. Field values are
// never read.
func FormFields(form Element, pageURL string) map[string]any {
	fieldCount, hasFile := 0, false
	for _, el := range form.Children() {
		Walk(el, func(e Element) {
			if !isListedElement(e) {
				return
			}
			fieldCount++
			if e.Attr("type") == "file" {
				hasFile = true
			}
		})
	}

	action := form.Attr("action")
	if action == "" {
		action = pageURL
	}
	method := form.Attr("method")
	if method == "" {
		method = "GET"
	}
	return map[string]any{
		"form_id":         orUnknown(form.ID()),
		"form_name":       orUnknown(form.Attr("name")),
		"action":          action,
		"method":          method,
		"field_count":     fieldCount,
		"has_file_upload": hasFile,
		"page_url":        pageURL,
	}
}

// FieldFields identifies a form field by name and type; withLength adds the
// value length, never the value.
func FieldFields(el Element, pageURL string, withLength bool) map[string]any {
	name := el.Attr("name")
	if name == "" {
		name = el.ID()
	}
	fieldType := el.Attr("type")
	if fieldType == "" {
		fieldType = strings.ToLower(el.TagName())
	}
	fields := map[string]any{
		"field_name": orUnknown(name),
		"field_type": fieldType,
		"page_url":   pageURL,
	}
	if withLength {
		fields["value_length"] = el.ValueLength()
	}
	return fields
}

// ResolveURL resolves ref against base the way an anchor's href property does.
// Unparseable input is returned unchanged.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func lastSegment(href string) string {
	if i := strings.LastIndexByte(href, '/'); i >= 0 {
		return href[i+1:]
	}
	return href
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
