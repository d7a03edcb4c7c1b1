package engine

import (
	"encoding/json"
	"strings"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"gopkg.in/yaml.v3"
)

// DefaultRuleID is the id given to every inline rule.
const DefaultRuleID = "default-rule"

// BuildInlineRule turns a YAML rule definition into the JSON passed to the
// engine. The rule must be a mapping; its id and language are overwritten.
func BuildInlineRule(ruleYAML, engineLanguage string) (string, error) {
	if strings.TrimSpace(ruleYAML) == "" {
		return "", errorwrapper.NewConfigError("Invalid rule.", errorwrapper.ErrInvalidInput)
	}

	var decoded any
	if err := yaml.Unmarshal([]byte(ruleYAML), &decoded); err != nil {
		return "", errorwrapper.NewConfigError("Invalid rule.", err)
	}

	rule, ok := decoded.(map[string]any)
	if !ok {
		return "", errorwrapper.NewConfigError("Invalid rule.", errorwrapper.NewError("rule must be a mapping, got %T", decoded))
	}

	rule["id"] = DefaultRuleID
	rule["language"] = engineLanguage

	encoded, err := json.Marshal(rule)
	if err != nil {
		return "", errorwrapper.NewConfigError("Invalid rule.", err)
	}
	return string(encoded), nil
}
