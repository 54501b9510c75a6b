package pathtemplate

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// LoadDefaults returns a PathTemplates registry populated from the
// embedded default layout (docs/ tree described in the external
// interfaces contract).
func LoadDefaults() (*PathTemplates, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(defaultsYAML, &raw); err != nil {
		return nil, err
	}

	t := New()
	for name, body := range raw {
		if err := t.Register(name, body); err != nil {
			return nil, err
		}
	}

	return t, nil
}
