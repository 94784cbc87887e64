package mailing

import (
	"regexp"
	"strings"
)

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	cssVarDeclRe = regexp.MustCompile(`--([A-Za-z0-9_-]+)\s*:\s*([^;}]+)`)
	classRuleRe  = regexp.MustCompile(`(?s)\.([A-Za-z0-9_-]+)\s*\{([^}]*)\}`)
	openTagRe    = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
	classAttrRe  = regexp.MustCompile(`\s*class\s*=\s*"([^"]*)"`)
	styleAttrRe  = regexp.MustCompile(`style\s*=\s*"([^"]*)"`)
)

// InlineStyles resolves class-based styling to fully inline style
// attributes. Many mail clients strip <style> blocks and ignore CSS custom
// properties, so before delivery: variable bindings are parsed from the
// style block, every var(--x) reference in the document is substituted with
// its bound value, the style block is removed, and each element's class list
// is replaced by a style attribute built from the recognized class
// declarations in class-list order (existing inline style first). Class
// names with no matching declaration are dropped silently.
func InlineStyles(doc string) string {
	m := styleBlockRe.FindStringSubmatch(doc)
	if m == nil {
		return doc
	}
	styleText := m[1]

	vars := make(map[string]string)
	for _, d := range cssVarDeclRe.FindAllStringSubmatch(styleText, -1) {
		vars["--"+d[1]] = strings.TrimSpace(d[2])
	}

	classes := make(map[string]string)
	for _, rule := range classRuleRe.FindAllStringSubmatch(styleText, -1) {
		decl := strings.Trim(strings.TrimSpace(rule[2]), ";")
		decl = substituteVars(decl, vars)
		decl = strings.TrimSpace(whitespaceRunRe.ReplaceAllString(decl, " "))
		if decl != "" {
			classes[rule[1]] = decl
		}
	}

	doc = styleBlockRe.ReplaceAllString(doc, "")
	doc = substituteVars(doc, vars)
	return applyClasses(doc, classes)
}

func substituteVars(s string, vars map[string]string) string {
	for name, val := range vars {
		re := regexp.MustCompile(`var\(\s*` + regexp.QuoteMeta(name) + `\s*\)`)
		s = re.ReplaceAllStringFunc(s, func(string) string { return val })
	}
	return s
}

func applyClasses(doc string, classes map[string]string) string {
	return openTagRe.ReplaceAllStringFunc(doc, func(tag string) string {
		cm := classAttrRe.FindStringSubmatch(tag)
		if cm == nil {
			return tag
		}

		var decls []string
		for _, name := range strings.Fields(cm[1]) {
			if d, ok := classes[name]; ok {
				decls = append(decls, d)
			}
		}

		tag = classAttrRe.ReplaceAllString(tag, "")
		if len(decls) == 0 {
			return tag
		}
		classStyle := strings.Join(decls, "; ")

		if sm := styleAttrRe.FindStringSubmatch(tag); sm != nil {
			existing := strings.TrimRight(strings.TrimSpace(sm[1]), ";")
			merged := classStyle
			if existing != "" {
				merged = existing + "; " + classStyle
			}
			return styleAttrRe.ReplaceAllStringFunc(tag, func(string) string {
				return `style="` + merged + `"`
			})
		}

		insert := ` style="` + classStyle + `"`
		if strings.HasSuffix(tag, "/>") {
			return tag[:len(tag)-2] + insert + "/>"
		}
		return tag[:len(tag)-1] + insert + ">"
	})
}
