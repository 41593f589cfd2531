package analysis

import (
	"embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/setasides.yaml
var setAsidesYAML embed.FS

// setAsideReference is the canonical set-aside vocabulary. Models tend to
// return these in whatever phrasing the solicitation used.
type setAsideReference struct {
	SetAsides []setAsideEntry `yaml:"set_asides"`
}

type setAsideEntry struct {
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

var (
	setAsideOnce    sync.Once
	setAsideByKey   map[string]string
	setAsideLoadErr error
)

func loadSetAsideReference() (map[string]string, error) {
	setAsideOnce.Do(func() {
		data, err := setAsidesYAML.ReadFile("config/setasides.yaml")
		if err != nil {
			setAsideLoadErr = err
			return
		}

		var ref setAsideReference
		if err := yaml.Unmarshal(data, &ref); err != nil {
			setAsideLoadErr = err
			return
		}

		index := make(map[string]string)
		for _, entry := range ref.SetAsides {
			index[strings.ToLower(entry.Code)] = entry.Code
			index[strings.ToLower(entry.Name)] = entry.Code
			for _, alias := range entry.Aliases {
				index[strings.ToLower(strings.TrimSpace(alias))] = entry.Code
			}
		}
		setAsideByKey = index
	})

	return setAsideByKey, setAsideLoadErr
}

// NormalizeSetAsides maps free-form set-aside phrases onto canonical codes,
// deduplicating case-insensitively. Unrecognized values pass through trimmed
// rather than being dropped.
func NormalizeSetAsides(values []string) []string {
	index, err := loadSetAsideReference()
	if err != nil {
		index = map[string]string{}
	}

	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if canonical, ok := index[strings.ToLower(v)]; ok {
			v = canonical
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}

	return out
}
