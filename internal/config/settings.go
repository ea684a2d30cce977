package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// PlatformSettings holds the chat platform credentials and delivery targets.
type PlatformSettings struct {
	AppID        string
	AppSecret    string
	CorpID       string
	CorpSecret   string
	AgentID      string
	GroupIDs     []string
	TemplateID   string
	TemplatePage string
	APIBase      string
	WorkAPIBase  string
}

// WorkConfigured reports whether the secondary work/enterprise channel has credentials.
func (p PlatformSettings) WorkConfigured() bool {
	return p.CorpID != "" && p.CorpSecret != ""
}

// FeatureSettings are the static feature toggles read once at startup.
type FeatureSettings struct {
	Push             bool
	GroupMessage     bool
	SubscribeMessage bool
	WorkWechat       bool
	BirthdayReminder bool
	AutoSendWishes   bool
	LunarCalendar    bool
	Weather          bool
	Cache            bool
	DailyAlmanac     bool
}

// ReminderSettings controls evaluation and dispatch pacing.
type ReminderSettings struct {
	DefaultDays  []int
	Interval     time.Duration
	CatchUpDays  int
	BatchDelay   time.Duration
	UpcomingDays int
	// SendAt is the local time of day from which a day's messages go out.
	SendAt time.Duration
}

// WeatherSettings locates the forecast used in almanac messages.
type WeatherSettings struct {
	Latitude  string
	Longitude string
	Units     string
}

// Configured reports whether a location was provided.
func (w WeatherSettings) Configured() bool {
	return w.Latitude != "" && w.Longitude != ""
}

// StorageSettings selects the key/value backend.
type StorageSettings struct {
	Backend string
	Path    string
}

// Settings is the complete runtime configuration.
type Settings struct {
	Platform PlatformSettings
	Features FeatureSettings
	Reminder ReminderSettings
	Weather  WeatherSettings
	Storage  StorageSettings
	Addr     string
	Language string
	Location *time.Location
}

// Defaults returns the settings used when no environment overrides are present.
func Defaults() Settings {
	return Settings{
		Platform: PlatformSettings{
			TemplatePage: DefaultTemplatePage,
			APIBase:      DefaultAPIBase,
			WorkAPIBase:  DefaultWorkAPIBase,
		},
		Features: FeatureSettings{
			Push:             true,
			GroupMessage:     true,
			SubscribeMessage: true,
			BirthdayReminder: true,
			AutoSendWishes:   true,
			LunarCalendar:    true,
			Cache:            true,
		},
		Reminder: ReminderSettings{
			DefaultDays:  slices.Clone(DefaultReminderDays),
			Interval:     DefaultInterval,
			CatchUpDays:  DefaultCatchUpDays,
			BatchDelay:   DefaultBatchDelay,
			UpcomingDays: DefaultUpcomingDays,
			SendAt:       9 * time.Hour,
		},
		Weather: WeatherSettings{
			Units: DefaultWeatherUnits,
		},
		Storage: StorageSettings{
			Backend: DefaultStorage,
		},
		Addr:     DefaultAddr,
		Language: DefaultLanguage,
		Location: time.Local,
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the optional .env files (missing files are not an error) and then
// resolves settings from the process environment.
func Load(envFiles ...string) (Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug(MsgEnvFileMissing,
			LogKeyComponent, CompSettings,
			LogKeyError, err,
		)
	}
	return LoadFrom(os.LookupEnv)
}

// LoadFrom resolves settings using the given lookup function.
// Secrets missing from the environment are looked up in the OS keyring.
func LoadFrom(lookup LookupFunc) (Settings, error) {
	s := Defaults()
	p := parser{lookup: lookup}

	// 1. Chat platform
	s.Platform.AppID = p.str(EnvAppID, s.Platform.AppID)
	s.Platform.AppSecret = p.str(EnvAppSecret, s.Platform.AppSecret)
	s.Platform.CorpID = p.str(EnvCorpID, s.Platform.CorpID)
	s.Platform.CorpSecret = p.str(EnvCorpSecret, s.Platform.CorpSecret)
	s.Platform.AgentID = p.str(EnvAgentID, s.Platform.AgentID)
	s.Platform.GroupIDs = p.list(EnvGroupIDs, s.Platform.GroupIDs)
	s.Platform.TemplateID = p.str(EnvTemplateID, s.Platform.TemplateID)
	s.Platform.TemplatePage = p.str(EnvTemplatePg, s.Platform.TemplatePage)
	s.Platform.APIBase = strings.TrimRight(p.str(EnvAPIBase, s.Platform.APIBase), "/")
	s.Platform.WorkAPIBase = strings.TrimRight(p.str(EnvWorkAPIBase, s.Platform.WorkAPIBase), "/")

	if s.Platform.AppSecret == "" && s.Platform.AppID != "" {
		s.Platform.AppSecret = secretFromKeyring(s.Platform.AppID)
	}
	if s.Platform.CorpSecret == "" && s.Platform.CorpID != "" {
		s.Platform.CorpSecret = secretFromKeyring(s.Platform.CorpID)
	}

	// 2. Feature toggles
	f := &s.Features
	f.Push = p.boolean(EnvEnablePush, f.Push)
	f.GroupMessage = p.boolean(EnvEnableGroupMessage, f.GroupMessage)
	f.SubscribeMessage = p.boolean(EnvEnableSubscribe, f.SubscribeMessage)
	f.WorkWechat = p.boolean(EnvEnableWorkWechat, f.WorkWechat)
	f.BirthdayReminder = p.boolean(EnvEnableReminder, f.BirthdayReminder)
	f.AutoSendWishes = p.boolean(EnvEnableAutoWishes, f.AutoSendWishes)
	f.LunarCalendar = p.boolean(EnvEnableLunar, f.LunarCalendar)
	f.Weather = p.boolean(EnvEnableWeather, f.Weather)
	f.Cache = p.boolean(EnvEnableCache, f.Cache)
	f.DailyAlmanac = p.boolean(EnvEnableDailyAlmanac, f.DailyAlmanac)

	// 3. Reminder pacing
	r := &s.Reminder
	r.DefaultDays = p.ints(EnvReminderDays, r.DefaultDays)
	r.Interval = p.duration(EnvInterval, r.Interval)
	r.CatchUpDays = p.integer(EnvCatchUpDays, r.CatchUpDays)
	r.BatchDelay = p.duration(EnvBatchDelay, r.BatchDelay)
	r.UpcomingDays = p.integer(EnvUpcomingDays, r.UpcomingDays)
	r.SendAt = p.timeOfDay(EnvReminderTime, r.SendAt)

	// 4. Weather, storage, server, locale
	s.Weather.Latitude = p.str(EnvWeatherLat, s.Weather.Latitude)
	s.Weather.Longitude = p.str(EnvWeatherLon, s.Weather.Longitude)
	s.Weather.Units = p.str(EnvWeatherUnits, s.Weather.Units)
	s.Storage.Backend = strings.ToLower(p.str(EnvStorage, s.Storage.Backend))
	s.Storage.Path = p.str(EnvDataPath, s.Storage.Path)
	s.Addr = p.str(EnvAddr, s.Addr)
	s.Language = strings.ToLower(p.str(EnvLanguage, s.Language))

	if tz := p.str(EnvTimezone, ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s %q: %w", ErrTimezone, tz, err))
		} else {
			s.Location = loc
		}
	}

	if err := errors.Join(p.errs...); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompSettings,
		LogKeyBackend, s.Storage.Backend,
		LogKeyLang, s.Language,
		LogKeyInterval, s.Reminder.Interval,
	)
	return s, nil
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	var errs []error
	for _, d := range s.Reminder.DefaultDays {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s: %s", ErrSettingsParse, ErrRecordLeadDays))
			break
		}
	}
	if s.Reminder.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%s: %s must be positive", ErrSettingsParse, EnvInterval))
	}
	if s.Reminder.CatchUpDays < 0 {
		errs = append(errs, fmt.Errorf("%s: %s must not be negative", ErrSettingsParse, EnvCatchUpDays))
	}
	if s.Reminder.BatchDelay < 0 {
		errs = append(errs, fmt.Errorf("%s: %s must not be negative", ErrSettingsParse, EnvBatchDelay))
	}
	if s.Reminder.UpcomingDays <= 0 || s.Reminder.UpcomingDays > MaxUpcomingDays {
		errs = append(errs, fmt.Errorf("%s: %s must be between 1 and %d", ErrSettingsParse, EnvUpcomingDays, MaxUpcomingDays))
	}
	switch s.Storage.Backend {
	case StorageSQLite, StorageFile, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrStorageUnknown, s.Storage.Backend))
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %s=%q", ErrSettingsParse, EnvLanguage, s.Language))
	}
	return errors.Join(errs...)
}

// DataPath returns the storage location, defaulting to the user config directory.
func (s Settings) DataPath() (string, error) {
	if s.Storage.Path != "" {
		return s.Storage.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	appDir := filepath.Join(dir, AppID)
	if s.Storage.Backend == StorageFile {
		return filepath.Join(appDir, DataDirName), nil
	}
	return filepath.Join(appDir, DBFileName), nil
}

// secretFromKeyring returns the stored secret or "" when the keyring has none.
func secretFromKeyring(account string) string {
	secret, err := keyring.Get(KeyringService, account)
	if err != nil {
		slog.Debug(MsgKeyringMiss,
			LogKeyComponent, CompSettings,
			LogKeyUser, account,
			LogKeyError, err,
		)
		return ""
	}
	return secret
}

// parser accumulates conversion errors so every bad variable is reported at once.
type parser struct {
	lookup LookupFunc
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) str(key, fallback string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return fallback
}

func (p *parser) list(key string, fallback []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *parser) boolean(key string, fallback bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %s=%q: %w", ErrSettingsParse, key, v, err))
		return fallback
	}
	return b
}

func (p *parser) integer(key string, fallback int) int {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %s=%q: %w", ErrSettingsParse, key, v, err))
		return fallback
	}
	return n
}

func (p *parser) ints(key string, fallback []int) []int {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	var out []int
	for _, part := range strings.Split(v, ListSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %s=%q: %w", ErrSettingsParse, key, v, err))
			return fallback
		}
		out = append(out, n)
	}
	return out
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %s=%q: %w", ErrSettingsParse, key, v, err))
		return fallback
	}
	return d
}

func (p *parser) timeOfDay(key string, fallback time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	t, err := time.Parse(ReminderTimeLayout, v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %s=%q: %s", ErrSettingsParse, key, v, ErrReminderTime))
		return fallback
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}
