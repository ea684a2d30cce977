package notify

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Messages renders the chat message templates in one language.
type Messages struct {
	localizer *i18n.Localizer
	languages []string
	lang      string
}

// NewMessages loads every embedded locale and selects lang.
func NewMessages(lang string) (*Messages, error) {
	bundle := i18n.NewBundle(language.Chinese)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if code == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code,
			config.LogKeyFile, name,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Messages{
		localizer: i18n.NewLocalizer(bundle, lang),
		languages: detected,
		lang:      lang,
	}, nil
}

// Languages lists the locale codes found in the embedded files.
func (m *Messages) Languages() []string {
	return m.languages
}

// Language is the selected locale code.
func (m *Messages) Language() string {
	return m.lang
}

// T translates key, returning the key itself when no template exists.
func (m *Messages) T(key string, data map[string]any) string {
	msg, err := m.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

func (m *Messages) line(key, value string) string {
	return m.T(key, map[string]any{"Value": value})
}

func (m *Messages) join(items []string) string {
	return strings.Join(items, m.T(config.TKeyListSeparator, nil))
}

// BirthdayMessage is the group text sent on the birthday itself. The almanac
// block is omitted when withAlmanac is false.
func (m *Messages) BirthdayMessage(rec birthday.Record, info lunar.DayInfo, withAlmanac bool) string {
	name := map[string]any{"Name": rec.Name}
	lines := []string{
		m.T(config.TKeyWishHeadline, name),
		"",
		m.T(config.TKeyWishBlessing, name),
		m.T(config.TKeyWishSunshine, nil),
	}
	if withAlmanac {
		lines = append(lines,
			"",
			m.T(config.TKeyWishAlmanac, nil),
			m.line(config.TKeyLineLunar, info.LunarDate),
			m.line(config.TKeyLineSuitable, m.join(info.Suitable)),
			m.line(config.TKeyLineUnsuitable, m.join(info.Unsuitable)),
		)
	}
	lines = append(lines, "", m.T(config.TKeyWishGoodDay, nil))
	if msg := strings.TrimSpace(rec.Message); msg != "" {
		lines = append(lines, "", m.T(config.TKeyWishCustom, map[string]any{"Message": msg}))
	}
	return strings.Join(lines, "\n")
}

// BelatedMessage is the wish text for a birthday that was only evaluated after
// its day ended. It carries no almanac.
func (m *Messages) BelatedMessage(rec birthday.Record, info lunar.DayInfo) string {
	lines := []string{
		m.T(config.TKeyWishBelated, map[string]any{
			"Name": rec.Name,
			"Date": info.Date.Format(config.DateKeyFormat),
		}),
		"",
		m.T(config.TKeyWishBlessing, map[string]any{"Name": rec.Name}),
	}
	if msg := strings.TrimSpace(rec.Message); msg != "" {
		lines = append(lines, "", m.T(config.TKeyWishCustom, map[string]any{"Message": msg}))
	}
	return strings.Join(lines, "\n")
}

// AlmanacMessage is the daily almanac text.
func (m *Messages) AlmanacMessage(info lunar.DayInfo) string {
	lines := []string{
		m.T(config.TKeyAlmanacHeader, map[string]any{"Date": info.Date.Format(config.DateKeyFormat)}),
		"",
		m.line(config.TKeyLineLunar, info.LunarDate),
		m.line(config.TKeyLineZodiac, info.Zodiac),
		m.line(config.TKeyLineConstell, info.Constellation),
		"",
		m.line(config.TKeyLineSuitable, m.join(info.Suitable)),
		m.line(config.TKeyLineUnsuitable, m.join(info.Unsuitable)),
		"",
		m.line(config.TKeyLineDesc, info.Description),
	}
	if len(info.Festivals) > 0 {
		lines = append(lines, m.line(config.TKeyLineFestivals, m.join(info.Festivals)))
	}
	if w := info.Weather; w != nil {
		lines = append(lines, m.T(config.TKeyLineWeather, map[string]any{
			"Condition":   w.Condition,
			"Temperature": w.Temperature(),
		}))
	}
	return strings.Join(lines, "\n")
}

// MonthDay formats a record's lunar month/day for listings.
func (m *Messages) MonthDay(month, day int) string {
	return m.T(config.TKeyRecordMonthDay, map[string]any{"Month": month, "Day": day})
}

// EventSummary is the calendar event title for a record.
func (m *Messages) EventSummary(rec birthday.Record) string {
	return m.T(config.TKeyEventSummary, map[string]any{
		"Name":  rec.Name,
		"Month": rec.LunarMonth,
		"Day":   rec.LunarDay,
	})
}
