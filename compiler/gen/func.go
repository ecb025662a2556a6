package gen

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	// Funcs are the predefined template functions used by the codegen.
	Funcs = template.FuncMap{
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"trim":      strings.Trim,
		"join":      strings.Join,
		"snake":     snake,
		"pascal":    pascal,
		"camel":     camel,
		"plural":    plural,
		"singular":  rules.Singularize,
		"receiver":  receiver,
		"quote":     quote,
		"xrange":    xrange,
		"fail":      fail,
		"dict":      dict,
	}
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

// AddAcronym adds a new acronym to the casing rules, so that pascal("fhir_id")
// yields "FHIRID".
func AddAcronym(word string) {
	rules.AddAcronym(word)
	acronyms[word] = struct{}{}
}

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Add common initialisms from golint and more.
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HCL", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB", "LHS", "MAC",
		"MB", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "SSO",
		"TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID",
		"VM", "XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// plural a name.
func plural(name string) string {
	p := rules.Pluralize(name)
	if p == name {
		p += "Slice"
	}
	return p
}

// isSeparator reports whether r splits words in schema names.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// pascalWords converts words to PascalCase, keeping acronyms upper-cased.
func pascalWords(words []string) string {
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
		} else {
			words[i] = rules.Capitalize(w)
		}
	}
	return strings.Join(words, "")
}

// pascal converts the given name into a PascalCase.
//
//	user_info  => UserInfo
//	full_name  => FullName
//	user_id    => UserID
//	full-admin => FullAdmin
func pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	return pascalWords(words)
}

// camel converts the given name into a camelCase.
//
//	user_info  => userInfo
//	full_name  => fullName
//	user_id    => userID
//	full-admin => fullAdmin
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	first := words[0]
	if _, ok := acronyms[strings.ToUpper(first)]; ok {
		first = strings.ToLower(first)
	} else if r := []rune(first); len(r) > 0 {
		r[0] = unicode.ToLower(r[0])
		first = string(r)
	}
	return first + pascalWords(words[1:])
}

// snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// receiver returns the receiver name of the given type.
//
//	[]T       => t
//	[1]T      => t
//	User      => u
//	UserQuery => uq
func receiver(s string) (r string) {
	// Trim invalid tokens for identifier prefix.
	s = strings.Trim(s, "[]*&0123456789")
	parts := strings.Split(snake(s), "_")
	min := len(parts[0])
	for _, w := range parts[1:] {
		if len(w) < min {
			min = len(w)
		}
	}
	for i := 1; i < min; i++ {
		r := parts[0][:i]
		for _, w := range parts[1:] {
			r += w[:i]
		}
		if !reservedReceiver(r) {
			s = r
			break
		}
	}
	name := strings.ToLower(s)
	if reservedReceiver(name) || name == "" {
		name = "_" + name
	}
	return name
}

func reservedReceiver(name string) bool {
	_, local := reservedReceivers[name]
	_, keyword := goKeywords[name]
	return local || keyword
}

// reservedReceivers holds names used as locals or parameters in the
// generated methods.
var reservedReceivers = map[string]struct{}{
	"v":      {},
	"enc":    {},
	"err":    {},
	"start":  {},
	"fields": {},
	"attrs":  {},
	"data":   {},
}

// quote only strings.
func quote(v any) any {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return v
}

// xrange generates a slice of len n.
func xrange(n int) (a []int) {
	for i := 0; i < n; i++ {
		a = append(a, i)
	}
	return
}

// fail unconditionally returns an empty string and an error with the given message.
func fail(msg string) (string, error) {
	return "", fmt.Errorf("fhirgen: template: %s", msg)
}

// dict creates a dictionary from a list of pairs.
func dict(v ...any) map[string]any {
	lenv := len(v)
	dict := make(map[string]any, lenv/2)
	for i := 0; i < lenv; i += 2 {
		key := fmt.Sprint(v[i])
		if i+1 >= lenv {
			dict[key] = ""
			continue
		}
		dict[key] = v[i+1]
	}
	return dict
}

// builderField returns the struct field for the given name
// and ensures it doesn't conflict with Go keywords and other
// generated identifiers.
func builderField(name string) string {
	if _, ok := goKeywords[name]; ok {
		return "_" + name
	}
	return name
}

var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {}, "interface": {},
	"map": {}, "package": {}, "range": {}, "return": {}, "select": {},
	"struct": {}, "switch": {}, "type": {}, "var": {},
}
