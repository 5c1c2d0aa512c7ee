package template

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultSeparator joins the values of a multi-valued token.
const DefaultSeparator = ", "

// Attribute keys.
const (
	AttrDefault   = "D"
	AttrLength    = "L"
	AttrOrder     = "O"
	AttrQuantity  = "Q"
	AttrSeparator = "S"
	AttrSubtract  = "-"
)

// Attribute modifies the values of a token.
type Attribute struct {
	Key   string
	Value string
}

// Token is a parsed placeholder. It is the payload of the TemplateToken
// annotation marking the placeholder until it is resolved.
type Token struct {
	Name       string
	Type       TokenType
	Attributes []Attribute
}

// parseAttributes splits "L10|D=none" into attributes. An entry is either
// key=value or a single-character key followed by its value.
func parseAttributes(s string) ([]Attribute, error) {
	var attrs []Attribute
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var a Attribute
		if strings.Contains(part, "=") {
			kv := strings.Split(part, "=")
			if len(kv) != 2 {
				return nil, ErrBadAttribute
			}
			a = Attribute{Key: strings.TrimSpace(kv[0]), Value: strings.TrimSpace(kv[1])}
		} else {
			_, size := utf8.DecodeRuneInString(part)
			a = Attribute{Key: part[:size], Value: part[size:]}
		}

		if !knownAttribute(a.Key) {
			return nil, ErrUnknownAttribute
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func knownAttribute(key string) bool {
	switch key {
	case AttrDefault, AttrLength, AttrOrder, AttrQuantity, AttrSeparator, AttrSubtract:
		return true
	}
	return false
}

// Process computes the text replacing the placeholder. Values are
// de-duplicated, passed through the attributes in declaration order and
// joined with the separator.
func (t *Token) Process(env Env) string {
	sep := DefaultSeparator
	for _, a := range t.Attributes {
		if a.Key == AttrSeparator {
			sep = a.Value
		}
	}

	var values []string
	if t.Type != nil {
		for _, v := range t.Type.Values(t.Name, env) {
			if !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
	}

	for _, a := range t.Attributes {
		values = a.apply(values)
	}

	return strings.ReplaceAll(strings.Join(values, sep), "\r\n", "\n")
}

func (a Attribute) apply(values []string) []string {
	switch a.Key {
	case AttrDefault:
		if len(values) == 0 {
			return []string{a.Value}
		}
		for i, v := range values {
			if v == "" {
				values[i] = a.Value
			}
		}

	case AttrLength:
		n, err := strconv.Atoi(a.Value)
		if err != nil {
			return values
		}
		for i, v := range values {
			values[i] = pad(v, n)
		}

	case AttrOrder:
		slices.SortStableFunc(values, func(x, y string) int {
			return strings.Compare(strings.ToLower(x), strings.ToLower(y))
		})
		if strings.EqualFold(a.Value, "D") {
			slices.Reverse(values)
		}

	case AttrQuantity:
		n, err := strconv.Atoi(a.Value)
		if err == nil && n >= 0 && n < len(values) {
			values = values[:n]
		}

	case AttrSubtract:
		sub, err := strconv.Atoi(a.Value)
		if err != nil {
			return values
		}
		for i, v := range values {
			if n, err := strconv.Atoi(v); err == nil {
				values[i] = strconv.Itoa(n - sub)
			}
		}
	}
	return values
}

// pad left-pads v to n characters, with zeros for numbers.
func pad(v string, n int) string {
	missing := n - utf8.RuneCountInString(v)
	if missing <= 0 {
		return v
	}
	fill := " "
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		fill = "0"
	}
	return strings.Repeat(fill, missing) + v
}
