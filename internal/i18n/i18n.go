// Package i18n resolves user-facing texts from YAML locale files.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultLang = "ru"

//go:embed locales/*.yaml
var locales embed.FS

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	Lang() string
}

// Catalog holds the flattened texts of one language.
type Catalog struct {
	lang  string
	texts map[string]string
}

// Load reads the embedded locale of lang.
func Load(lang string) (*Catalog, error) {
	return LoadFS(locales, "locales/"+lang+".yaml", lang)
}

// LoadFS reads the locale file name from fsys. The file must have lang as its
// single root key.
func LoadFS(fsys fs.FS, name, lang string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", name, err)
	}
	return Parse(data, lang)
}

// Parse decodes a locale document.
func Parse(data []byte, lang string) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("i18n: parse %s: %w", lang, err)
	}

	root := rootMapping(&doc)
	if root == nil {
		return nil, fmt.Errorf("i18n: locale %s is empty", lang)
	}

	var body *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == lang {
			body = root.Content[i+1]
			break
		}
	}
	if body == nil || body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("i18n: language %q is missing", lang)
	}

	texts := make(map[string]string)
	if err := collect("", body, texts); err != nil {
		return nil, err
	}
	return &Catalog{lang: lang, texts: texts}, nil
}

// MustDefault returns the embedded default-language catalog and panics if the
// embedded locale is broken.
func MustDefault() Translator {
	c, err := Load(DefaultLang)
	if err != nil {
		panic(err)
	}
	return c
}

// Tf resolves key and formats it with args.
func Tf(t Translator, key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// Lang reports the catalog language.
func (c *Catalog) Lang() string {
	return c.lang
}

// T returns the text stored under key, or key itself when it is unknown.
func (c *Catalog) T(key string) string {
	key = strings.TrimSpace(key)
	if text, ok := c.texts[key]; ok {
		return text
	}
	return key
}

// Missing lists the keys the catalog cannot resolve, sorted.
func (c *Catalog) Missing(keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := c.texts[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

func collect(prefix string, node *yaml.Node, out map[string]string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}

		switch value.Kind {
		case yaml.ScalarNode:
			out[key] = value.Value
		case yaml.MappingNode:
			if err := collect(key, value, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("i18n: key %s at line %d must be a string or a mapping", key, value.Line)
		}
	}
	return nil
}
