package outline

import (
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"main.go", "go"},
		{"script.PY", "python"},
		{"lib.rs", "rust"},
		{"README.md", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.filename); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestSymbolsGo(t *testing.T) {
	source := `package main

import "fmt"

const answer = 42

type User struct {
	Name string
}

func (u *User) Greet() {
	fmt.Println(u.Name)
}

func main() {
}
`
	symbols, err := Symbols([]byte(source), "main.go")
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}

	want := []Symbol{
		{Kind: "const", Name: "answer", Line: 4, EndLine: 4},
		{Kind: "type", Name: "User", Line: 6, EndLine: 8},
		{Kind: "method", Name: "Greet", Line: 10, EndLine: 12},
		{Kind: "func", Name: "main", Line: 14, EndLine: 15},
	}
	if len(symbols) != len(want) {
		t.Fatalf("got %d symbols, want %d: %+v", len(symbols), len(want), symbols)
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbol %d = %+v, want %+v", i, symbols[i], want[i])
		}
	}
}

func TestSymbolsPythonNested(t *testing.T) {
	source := `import os

class Greeter:
    def hello(self):
        return "hi"

def main():
    pass
`
	symbols, err := Symbols([]byte(source), "app.py")
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}

	var names []string
	for _, s := range symbols {
		names = append(names, s.Kind+" "+s.Name)
	}
	want := []string{"class Greeter", "def hello", "def main"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("symbol %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSymbolsUnsupported(t *testing.T) {
	symbols, err := Symbols([]byte("# Title\n"), "README.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if symbols != nil {
		t.Errorf("expected no symbols, got %+v", symbols)
	}
}

func TestNextPrev(t *testing.T) {
	symbols := []Symbol{{Line: 2}, {Line: 10}, {Line: 20}}

	tests := []struct {
		line int
		next int
		prev int
	}{
		{0, 0, -1},
		{2, 1, -1},
		{5, 1, 0},
		{20, -1, 1},
		{25, -1, 2},
	}
	for _, tt := range tests {
		if got := Next(symbols, tt.line); got != tt.next {
			t.Errorf("Next(%d) = %d, want %d", tt.line, got, tt.next)
		}
		if got := Prev(symbols, tt.line); got != tt.prev {
			t.Errorf("Prev(%d) = %d, want %d", tt.line, got, tt.prev)
		}
	}
}
