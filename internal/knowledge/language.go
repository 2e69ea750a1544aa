package knowledge

import (
	"path/filepath"
	"strings"
)

// Language is a source language hint attached to the AST prompt.
type Language string

const (
	LangPython     Language = "python"
	LangSolidity   Language = "solidity"
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
)

var extensionLanguages = map[string]Language{
	".py":  LangPython,
	".pyi": LangPython,
	".sol": LangSolidity,
	".rs":  LangRust,
	".go":  LangGo,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
}

// DetectLanguage maps a file extension to a Language, defaulting to python.
func DetectLanguage(path string) Language {
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangPython
}

// ParseLanguage accepts a language name, case-insensitively.
func ParseLanguage(s string) (Language, bool) {
	switch lang := Language(strings.ToLower(strings.TrimSpace(s))); lang {
	case LangPython, LangSolidity, LangRust, LangGo, LangJavaScript, LangTypeScript:
		return lang, true
	}
	return "", false
}
