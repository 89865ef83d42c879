// Package i18n loads translated gateway messages from YAML locale files and
// resolves the best matching language for a requested locale.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Translator holds the loaded message catalogs keyed by language tag.
type Translator struct {
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[string]string
}

// Load reads all *.yaml files from dir. The file base name is the BCP 47
// language tag ("en", "nl"). The first loaded tag acts as the fallback.
func Load(dir string) (*Translator, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list locale files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found in %s", dir)
	}

	t := &Translator{
		messages: make(map[language.Tag]map[string]string),
	}

	for _, path := range paths {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		tag, err := language.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid locale file name %q: %w", filepath.Base(path), err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", path, err)
		}

		var raw map[string]map[string]string
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", path, err)
		}

		flat := make(map[string]string)
		for section, entries := range raw {
			for key, msg := range entries {
				flat[section+"."+key] = msg
			}
		}

		// English first so it becomes the matcher fallback.
		if tag == language.English {
			t.tags = append([]language.Tag{tag}, t.tags...)
		} else {
			t.tags = append(t.tags, tag)
		}
		t.messages[tag] = flat
	}

	t.matcher = language.NewMatcher(t.tags)

	return t, nil
}

// T returns the message for key in the best matching language for locale,
// with %name% placeholders substituted from args. Unknown keys are returned
// verbatim so a missing translation never breaks a payment flow.
func (t *Translator) T(locale, key string, args map[string]string) string {
	tag, _ := language.MatchStrings(t.matcher, locale)

	msg, ok := t.messages[tag][key]
	if !ok {
		// Matcher may return a regional variant; fall back to the base tag.
		base, _ := tag.Base()
		for candidate, catalog := range t.messages {
			if b, _ := candidate.Base(); b == base {
				msg, ok = catalog[key]
				break
			}
		}
	}
	if !ok {
		msg, ok = t.messages[t.tags[0]][key]
	}
	if !ok {
		return key
	}

	for name, value := range args {
		msg = strings.ReplaceAll(msg, "%"+name+"%", value)
	}

	return msg
}

// Languages returns the loaded language tags, fallback first.
func (t *Translator) Languages() []language.Tag {
	return t.tags
}
