package validation

import (
	"regexp"
	"strings"
)

// codeScan is the shared tokenization result both heuristic passes read.
// It is a single O(n) pass over the snapshot, no AST.
type codeScan struct {
	content       string
	imports       map[string]string // identifier -> module source
	declarations  map[string]bool   // const/let/var/function/class/interface/type/enum names
	parameters    map[string]bool   // function parameters and destructured bindings
	usedTokens    map[string]int    // identifier -> occurrence count outside imports
	calledTokens  map[string]bool   // identifiers followed by ( and not preceded by .
	jsxReferences map[string]bool   // identifiers referenced from JSX attribute expressions
}

var (
	identifierRegex = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

	importNamedRegex     = regexp.MustCompile(`import\s*(?:type\s*)?\{([^}]*)\}\s*from\s*['"]([^'"]+)['"]`)
	importDefaultRegex   = regexp.MustCompile(`import\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?:,|\s+from)\s*.*?['"]([^'"]+)['"]`)
	importNamespaceRegex = regexp.MustCompile(`import\s*\*\s*as\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*from\s*['"]([^'"]+)['"]`)

	declarationRegex = regexp.MustCompile(`\b(?:const|let|var|function|class|interface|type|enum)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

	functionParamsRegex = regexp.MustCompile(`(?:function\s+[A-Za-z_$][A-Za-z0-9_$]*\s*|=\s*(?:async\s*)?)\(([^)]*)\)`)
	destructureRegex    = regexp.MustCompile(`(?:const|let|var)\s*[\[{]([^\]}]*)[\]}]\s*=`)

	callRegex = regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)

	jsxAttrExprRegex = regexp.MustCompile(`\b[a-zA-Z]+=\{([A-Za-z_$][A-Za-z0-9_$]*)[}(.]`)

	importLinePrefix = regexp.MustCompile(`(?m)^\s*import\b.*$`)
)

// jsKeywords and globals that never need declaring.
var builtinIdentifiers = map[string]bool{
	"const": true, "let": true, "var": true, "function": true, "class": true,
	"interface": true, "type": true, "enum": true, "return": true, "if": true,
	"else": true, "for": true, "while": true, "do": true, "switch": true,
	"case": true, "default": true, "break": true, "continue": true, "new": true,
	"delete": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"void": true, "this": true, "super": true, "null": true, "undefined": true,
	"true": true, "false": true, "import": true, "export": true, "from": true,
	"as": true, "async": true, "await": true, "yield": true, "try": true,
	"catch": true, "finally": true, "throw": true, "extends": true,
	"implements": true, "static": true, "public": true, "private": true,
	"protected": true, "readonly": true, "abstract": true, "declare": true,
	"namespace": true, "module": true, "string": true, "number": true,
	"boolean": true, "any": true, "unknown": true, "never": true, "object": true,
	"console": true, "window": true, "document": true, "Math": true,
	"JSON": true, "Promise": true, "Object": true, "Array": true,
	"String": true, "Number": true, "Boolean": true, "Date": true,
	"RegExp": true, "Error": true, "TypeError": true, "Map": true, "Set": true,
	"WeakMap": true, "WeakSet": true, "Symbol": true, "Proxy": true,
	"Reflect": true, "Infinity": true, "NaN": true, "isNaN": true,
	"parseInt": true, "parseFloat": true, "setTimeout": true,
	"setInterval": true, "clearTimeout": true, "clearInterval": true,
	"fetch": true, "alert": true, "require": true, "process": true,
	"React": true, "JSX": true, "Partial": true, "Required": true,
	"Readonly": true, "Record": true, "Pick": true, "Omit": true,
	"Exclude": true, "Extract": true, "NonNullable": true,
	"ReturnType": true, "Parameters": true, "Awaited": true, "keyof": true,
}

// methodAllowlist holds prototype methods that appear as bare calls after
// a dot and must not be treated as hallucinated functions.
var methodAllowlist = map[string]bool{
	"map": true, "filter": true, "reduce": true, "forEach": true,
	"find": true, "findIndex": true, "some": true, "every": true,
	"includes": true, "indexOf": true, "slice": true, "splice": true,
	"push": true, "pop": true, "shift": true, "unshift": true,
	"join": true, "split": true, "concat": true, "sort": true,
	"reverse": true, "flat": true, "flatMap": true, "keys": true,
	"values": true, "entries": true, "toString": true, "toLowerCase": true,
	"toUpperCase": true, "trim": true, "replace": true, "replaceAll": true,
	"match": true, "test": true, "exec": true, "startsWith": true,
	"endsWith": true, "padStart": true, "padEnd": true, "charAt": true,
	"toFixed": true, "then": true, "catch": true, "finally": true,
	"apply": true, "call": true, "bind": true, "freeze": true,
	"assign": true, "stringify": true, "parse": true, "log": true,
	"warn": true, "error": true, "preventDefault": true,
	"stopPropagation": true, "addEventListener": true,
	"removeEventListener": true,
}

// scanCode tokenizes a code snapshot into the identifier sets the
// heuristic passes consume.
func scanCode(content string) *codeScan {
	scan := &codeScan{
		content:       content,
		imports:       map[string]string{},
		declarations:  map[string]bool{},
		parameters:    map[string]bool{},
		usedTokens:    map[string]int{},
		calledTokens:  map[string]bool{},
		jsxReferences: map[string]bool{},
	}

	for _, m := range importNamedRegex.FindAllStringSubmatch(content, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			// "orig as alias" binds the alias.
			if idx := strings.Index(name, " as "); idx != -1 {
				name = strings.TrimSpace(name[idx+4:])
			}
			name = strings.TrimPrefix(name, "type ")
			if name != "" {
				scan.imports[name] = m[2]
			}
		}
	}
	for _, m := range importDefaultRegex.FindAllStringSubmatch(content, -1) {
		scan.imports[m[1]] = m[2]
	}
	for _, m := range importNamespaceRegex.FindAllStringSubmatch(content, -1) {
		scan.imports[m[1]] = m[2]
	}

	body := importLinePrefix.ReplaceAllString(content, "")

	for _, m := range declarationRegex.FindAllStringSubmatch(body, -1) {
		scan.declarations[m[1]] = true
	}
	for _, m := range functionParamsRegex.FindAllStringSubmatch(body, -1) {
		for _, param := range strings.Split(m[1], ",") {
			param = strings.TrimSpace(param)
			// Drop type annotations and defaults.
			for _, sep := range []string{":", "="} {
				if idx := strings.Index(param, sep); idx != -1 {
					param = strings.TrimSpace(param[:idx])
				}
			}
			param = strings.Trim(param, "{}[]. ")
			for _, piece := range strings.Split(param, " ") {
				if id := identifierRegex.FindString(piece); id != "" {
					scan.parameters[id] = true
				}
			}
		}
	}
	for _, m := range destructureRegex.FindAllStringSubmatch(body, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			if idx := strings.Index(name, ":"); idx != -1 {
				name = strings.TrimSpace(name[idx+1:])
			}
			if id := identifierRegex.FindString(name); id != "" {
				scan.parameters[id] = true
			}
		}
	}

	for _, token := range identifierRegex.FindAllString(body, -1) {
		scan.usedTokens[token]++
	}

	for _, m := range callRegex.FindAllStringSubmatchIndex(body, -1) {
		name := body[m[2]:m[3]]
		// A preceding dot means a method call; those are judged by the
		// allowlist, not the declaration sets, and the long tail of
		// object-specific methods makes flagging them unreliable.
		if m[2] > 0 && body[m[2]-1] == '.' {
			continue
		}
		scan.calledTokens[name] = true
	}

	for _, m := range jsxAttrExprRegex.FindAllStringSubmatch(body, -1) {
		scan.jsxReferences[m[1]] = true
	}

	return scan
}

// isDefined reports whether an identifier is accounted for by imports,
// declarations, parameters or the builtin allowlist.
func (s *codeScan) isDefined(name string) bool {
	if builtinIdentifiers[name] {
		return true
	}
	if _, ok := s.imports[name]; ok {
		return true
	}
	return s.declarations[name] || s.parameters[name]
}
