package errors

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// keyPrefix namespaces catalog codes in the x/text message catalog.
const keyPrefix = "caliper."

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	registerOnce sync.Once
	registerErr  error
)

type translationFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// RegisterTranslations loads the embedded translation files into the
// default x/text message catalog. It is safe to call more than once.
func RegisterTranslations() error {
	registerOnce.Do(func() {
		registerErr = registerFS(localeFS)
	})
	return registerErr
}

func registerFS(fsys fs.FS) error {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return fmt.Errorf("glob translations: %w", err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		var file translationFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return fmt.Errorf("%s: locale %q: %w", path, file.Locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for code, text := range file.Messages {
			if _, ok := ErrorCatalog[code]; !ok {
				return fmt.Errorf("%s: unknown error code %q", path, code)
			}
			for _, t := range tags {
				if err := message.SetString(t, keyPrefix+code, text); err != nil {
					return fmt.Errorf("%s: register %s: %w", path, code, err)
				}
			}
		}
	}
	return nil
}

// Localize renders the error message in the language of tag, falling back
// to the English catalog text when no translation exists.
func (e *CaliperError) Localize(tag language.Tag) string {
	if e.Code == "" {
		return e.Message
	}
	if err := RegisterTranslations(); err != nil {
		return e.Message
	}
	key := keyPrefix + e.Code
	tmpl := message.NewPrinter(tag).Sprintf(key)
	if tmpl == key {
		return e.Message
	}
	return renderTemplate(tmpl, e.Data)
}
