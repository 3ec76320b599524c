package svgload

import (
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// selector is a simple CSS selector: an optional tag name,
// followed by optional class and id conditions, such as
// "rect", ".warning", "#logo" or "circle.big".
type selector struct {
	tag     string
	classes []string
	id      string
}

func (s selector) specificity() int {
	sp := len(s.classes) * 10
	if s.id != "" {
		sp += 100
	}
	if s.tag != "" {
		sp++
	}
	return sp
}

func (s selector) match(tag, id string, classes []string) bool {
	if s.tag != "" && s.tag != tag {
		return false
	}
	if s.id != "" && s.id != id {
		return false
	}
	for _, cl := range s.classes {
		found := false
		for _, c := range classes {
			if c == cl {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// parseSelector returns false for selectors using combinators,
// pseudo classes or attribute conditions.
func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~:[*") {
		return selector{}, false
	}
	var out selector
	// split before each '.' or '#'
	start := 0
	parts := []string{}
	for i := 1; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' || s[i] == '#' {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	for _, part := range parts {
		switch part[0] {
		case '.':
			if len(part) == 1 {
				return selector{}, false
			}
			out.classes = append(out.classes, part[1:])
		case '#':
			if len(part) == 1 {
				return selector{}, false
			}
			out.id = part[1:]
		default:
			out.tag = part
		}
	}
	return out, true
}

type cssRule struct {
	selector     selector
	order        int
	declarations []*css.Declaration
}

// styleSheet stores the rules of every <style> element of a file
type styleSheet struct {
	rules       []cssRule
	unsupported []string // ignored selectors
}

// add parses the content of a <style> element
func (sh *styleSheet) add(text string) error {
	sheet, err := parser.Parse(text)
	if err != nil {
		return err
	}
	for _, rule := range sheet.Rules {
		if rule.Kind == css.AtRule || len(rule.Declarations) == 0 {
			continue
		}
		for _, sel := range rule.Selectors {
			s, ok := parseSelector(sel)
			if !ok {
				sh.unsupported = append(sh.unsupported, sel)
				continue
			}
			sh.rules = append(sh.rules, cssRule{selector: s, order: len(sh.rules), declarations: rule.Declarations})
		}
	}
	return nil
}

// match returns the rules applying to an element, sorted
// by increasing priority
func (sh *styleSheet) match(tag, id string, classes []string) []cssRule {
	var out []cssRule
	for _, rule := range sh.rules {
		if rule.selector.match(tag, id, classes) {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].selector.specificity(), out[j].selector.specificity()
		if si != sj {
			return si < sj
		}
		return out[i].order < out[j].order
	})
	return out
}

// parseInlineStyle reads a style attribute
func parseInlineStyle(style string) ([]*css.Declaration, error) {
	style = strings.TrimSpace(style)
	// the parser is strict about the final semicolon
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	return parser.ParseDeclarations(style)
}
