// Package translations is the UI language resource provider. Message files
// are embedded, parsed once by Load, and read-only afterwards.
package translations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/dalemusser/hydrotrim/internal/domain/models"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Labels maps message IDs to display strings for one language.
type Labels map[string]string

// Get returns the string for key, or key itself when it is unknown so a
// missing translation shows up on the page instead of disappearing.
func (l Labels) Get(key string) string {
	if v, ok := l[key]; ok {
		return v
	}
	return key
}

// Provider serves Labels per language.
type Provider struct {
	bundle *i18n.Bundle
	labels map[models.Language]Labels
	ids    []string
}

// Load parses the embedded message files.
func Load(logger *zap.Logger) (*Provider, error) {
	return LoadFS(localeFS, "locales", logger)
}

// LoadFS parses every *.yaml file in dir of fsys. The file name (minus the
// extension) is the language tag. English is the fallback language and
// defines the message IDs.
func LoadFS(fsys fs.FS, dir string, logger *zap.Logger) (*Provider, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	idSet := map[string]struct{}{}
	for _, name := range files {
		buf, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		mf, err := bundle.ParseMessageFileBytes(buf, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if mf.Tag == language.English {
			for _, m := range mf.Messages {
				idSet[m.ID] = struct{}{}
			}
		}
		logger.Debug("loaded message file",
			zap.String("file", name),
			zap.String("lang", mf.Tag.String()),
			zap.Int("messages", len(mf.Messages)))
	}
	if len(idSet) == 0 {
		return nil, fmt.Errorf("no English messages found in %s", dir)
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	p := &Provider{
		bundle: bundle,
		labels: make(map[models.Language]Labels, len(models.Languages)),
		ids:    ids,
	}

	english := p.localizeAll(models.LanguageEnglish, nil)
	for _, lang := range models.Languages {
		if lang == models.LanguageEnglish {
			p.labels[lang] = english
			continue
		}
		p.labels[lang] = p.localizeAll(lang, english)
	}
	return p, nil
}

// localizeAll resolves every ID for lang, falling back to fallback (or the
// ID itself) for messages the language lacks.
func (p *Provider) localizeAll(lang models.Language, fallback Labels) Labels {
	loc := i18n.NewLocalizer(p.bundle, string(lang))
	out := make(Labels, len(p.ids))
	for _, id := range p.ids {
		msg, tag, err := loc.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: id})
		if err == nil && msg != "" && (fallback == nil || tag != language.English) {
			out[id] = msg
			continue
		}
		out[id] = fallback.Get(id)
	}
	return out
}

// Labels returns the table for lang. Unsupported languages get English.
func (p *Provider) Labels(lang models.Language) Labels {
	if l, ok := p.labels[models.ParseLanguage(string(lang))]; ok {
		return l
	}
	return p.labels[models.DefaultLanguage]
}
