// Package outline extracts top-level definitions from source files so the
// inspect view can jump between them.
package outline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	clang "github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Symbol is one definition. Lines are 0-indexed to match the inspect view.
type Symbol struct {
	Kind    string
	Name    string
	Line    int
	EndLine int
}

var extensionToLanguage = map[string]string{
	".go":   "go",
	".py":   "python",
	".pyw":  "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".mts":  "typescript",
	".cts":  "typescript",
	".rs":   "rust",
	".rb":   "ruby",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
	".sh":   "bash",
	".bash": "bash",
	".zsh":  "bash",
}

// DetectLanguage returns the outline language for filename, or "".
func DetectLanguage(filename string) string {
	return extensionToLanguage[strings.ToLower(filepath.Ext(filename))]
}

func language(lang string) *sitter.Language {
	switch lang {
	case "go":
		return golang.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	case "ruby":
		return ruby.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "c":
		return clang.GetLanguage()
	case "cpp":
		return cpp.GetLanguage()
	case "csharp":
		return csharp.GetLanguage()
	case "bash":
		return bash.GetLanguage()
	}
	return nil
}

// definitionTypes maps AST node types to symbol kinds.
func definitionTypes(lang string) map[string]string {
	switch lang {
	case "go":
		return map[string]string{
			"function_declaration": "func",
			"method_declaration":   "method",
			"type_declaration":     "type",
			"const_declaration":    "const",
			"var_declaration":      "var",
		}
	case "python":
		return map[string]string{
			"function_definition":  "def",
			"class_definition":     "class",
			"decorated_definition": "def",
		}
	case "javascript", "typescript":
		return map[string]string{
			"function_declaration":   "function",
			"method_definition":      "method",
			"class_declaration":      "class",
			"interface_declaration":  "interface",
			"type_alias_declaration": "type",
			"enum_declaration":       "enum",
		}
	case "rust":
		return map[string]string{
			"function_item": "fn",
			"impl_item":     "impl",
			"struct_item":   "struct",
			"enum_item":     "enum",
			"trait_item":    "trait",
			"mod_item":      "mod",
		}
	case "java", "csharp":
		return map[string]string{
			"method_declaration":      "method",
			"constructor_declaration": "constructor",
			"class_declaration":       "class",
			"interface_declaration":   "interface",
			"enum_declaration":        "enum",
		}
	case "ruby":
		return map[string]string{
			"method":           "def",
			"singleton_method": "def",
			"class":            "class",
			"module":           "module",
		}
	case "c", "cpp":
		return map[string]string{
			"function_definition":  "function",
			"struct_specifier":     "struct",
			"class_specifier":      "class",
			"namespace_definition": "namespace",
		}
	case "bash":
		return map[string]string{
			"function_definition": "function",
		}
	}
	return nil
}

// Symbols parses source and returns its definitions in file order. Files in
// languages without a grammar yield no symbols and no error.
func Symbols(source []byte, filename string) ([]Symbol, error) {
	lang := DetectLanguage(filename)
	tsLang := language(lang)
	if tsLang == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	defer tree.Close()

	var symbols []Symbol
	walk(tree.RootNode(), source, definitionTypes(lang), &symbols)
	return symbols, nil
}

// walk collects definitions, descending into containers such as classes
// and impl blocks so their methods are listed too.
func walk(node *sitter.Node, source []byte, types map[string]string, out *[]Symbol) {
	if kind, ok := types[node.Type()]; ok {
		*out = append(*out, Symbol{
			Kind:    kind,
			Name:    symbolName(node, source),
			Line:    int(node.StartPoint().Row),
			EndLine: int(node.EndPoint().Row),
		})
		if node.Type() == "decorated_definition" {
			return
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), source, types, out)
	}
}

func symbolName(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(source)
	}

	// Go type/const/var declarations and decorated Python definitions keep
	// the name one level down.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if n := child.ChildByFieldName("name"); n != nil {
			return n.Content(source)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "name", "type_identifier":
			return child.Content(source)
		}
	}
	return ""
}

// Next returns the index of the first symbol starting after line, or -1.
func Next(symbols []Symbol, line int) int {
	for i, s := range symbols {
		if s.Line > line {
			return i
		}
	}
	return -1
}

// Prev returns the index of the last symbol starting before line, or -1.
func Prev(symbols []Symbol, line int) int {
	for i := len(symbols) - 1; i >= 0; i-- {
		if symbols[i].Line < line {
			return i
		}
	}
	return -1
}
