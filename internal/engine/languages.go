package engine

import (
	"fmt"
	"strings"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
)

// Language describes a language the engine can parse. EngineTag is the
// value passed to the engine; ID is the short name used by callers.
type Language struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	EngineTag   string `json:"engineTag"`
}

// Languages lists the supported languages in display order.
var Languages = []Language{
	{ID: "typescript", DisplayName: "TypeScript", EngineTag: "TypeScript"},
	{ID: "tsx", DisplayName: "TypeScript (JSX)", EngineTag: "Tsx"},
	{ID: "javascript", DisplayName: "JavaScript", EngineTag: "JavaScript"},
	{ID: "jsx", DisplayName: "JavaScript (JSX)", EngineTag: "jsx"},
	{ID: "python", DisplayName: "Python", EngineTag: "python"},
	{ID: "ruby", DisplayName: "Ruby", EngineTag: "ruby"},
	{ID: "rust", DisplayName: "Rust", EngineTag: "rust"},
	{ID: "go", DisplayName: "Go", EngineTag: "go"},
	{ID: "java", DisplayName: "Java", EngineTag: "java"},
	{ID: "kotlin", DisplayName: "Kotlin", EngineTag: "kotlin"},
	{ID: "swift", DisplayName: "Swift", EngineTag: "swift"},
	{ID: "cpp", DisplayName: "C++", EngineTag: "cpp"},
	{ID: "csharp", DisplayName: "C#", EngineTag: "csharp"},
	{ID: "php", DisplayName: "PHP", EngineTag: "php"},
	{ID: "scala", DisplayName: "Scala", EngineTag: "scala"},
	{ID: "lua", DisplayName: "Lua", EngineTag: "lua"},
	{ID: "dart", DisplayName: "Dart", EngineTag: "dart"},
	{ID: "elixir", DisplayName: "Elixir", EngineTag: "elixir"},
	{ID: "haskell", DisplayName: "Haskell", EngineTag: "haskell"},
}

// ResolveLanguage finds a language by ID or engine tag, ignoring case.
func ResolveLanguage(name string) (Language, error) {
	needle := strings.TrimSpace(name)
	for _, lang := range Languages {
		if strings.EqualFold(lang.ID, needle) || strings.EqualFold(lang.EngineTag, needle) {
			return lang, nil
		}
	}
	return Language{}, errorwrapper.NewConfigError(fmt.Sprintf("unsupported language %q", name), nil)
}
