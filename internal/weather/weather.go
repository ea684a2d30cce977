// Package weather fetches the daily forecast shown in almanac messages.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// Config locates the forecast.
type Config struct {
	Latitude        string
	Longitude       string
	TemperatureUnit string // "celsius" or "fahrenheit"
	Language        string // description language, "zh" or "en"
}

// Report is the forecast for one calendar day.
type Report struct {
	Date      string  `json:"date"`
	Code      int     `json:"code"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Unit      string  `json:"unit"` // "C" or "F"
}

// Temperature renders the daily range, e.g. "12~21°C".
func (r Report) Temperature() string {
	return fmt.Sprintf("%.0f~%.0f°%s", r.Low, r.High, r.Unit)
}

type entry struct {
	report  Report
	fetched time.Time
}

// Service queries Open-Meteo and caches one report per day.
type Service struct {
	config  Config
	client  *http.Client
	baseURL string
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]entry
}

// NewService creates a weather service. Unset units default to celsius.
func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = config.DefaultWeatherUnits
	}
	return &Service{
		config:  cfg,
		client:  &http.Client{Timeout: config.PlatformCallTimeout},
		baseURL: config.WeatherAPIBase,
		now:     time.Now,
		cache:   make(map[string]entry),
	}
}

// WithBaseURL points the service at another endpoint (tests, mirrors).
func (s *Service) WithBaseURL(u string) *Service {
	s.baseURL = u
	return s
}

// Configured reports whether a location was provided.
func (s *Service) Configured() bool {
	return s.config.Latitude != "" && s.config.Longitude != ""
}

// Forecast returns the report for the calendar day of date.
// A stale cached report is returned when the API fails.
func (s *Service) Forecast(ctx context.Context, date time.Time) (*Report, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%s: location not configured", config.ErrWeatherFetch)
	}
	key := date.Format(config.DateKeyFormat)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && s.now().Sub(cached.fetched) < config.WeatherCacheTTL {
		r := cached.report
		return &r, nil
	}

	report, err := s.fetch(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, config.MsgWeatherFailed,
			config.LogKeyComponent, config.CompWeather,
			config.LogKeyDate, key,
			config.LogKeyError, err,
		)
		if ok {
			r := cached.report
			return &r, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = entry{report: report, fetched: s.now()}
	s.mu.Unlock()

	return &report, nil
}

type apiResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context, day string) (Report, error) {
	q := url.Values{}
	q.Set("latitude", s.config.Latitude)
	q.Set("longitude", s.config.Longitude)
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	q.Set("timezone", "auto")
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("temperature_unit", s.config.TemperatureUnit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", config.ErrWeatherFetch, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", config.ErrWeatherFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("%s: status %d", config.ErrWeatherFetch, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Report{}, fmt.Errorf("%s: %w", config.ErrDecodeResponse, err)
	}
	if len(body.Daily.WeatherCode) == 0 {
		return Report{}, fmt.Errorf("%s: empty daily forecast", config.ErrWeatherFetch)
	}

	code := body.Daily.WeatherCode[0]
	desc, icon := Describe(code, s.config.Language)
	report := Report{
		Date:      day,
		Code:      code,
		Condition: desc,
		Icon:      icon,
		Unit:      "C",
	}
	if s.config.TemperatureUnit == "fahrenheit" {
		report.Unit = "F"
	}
	if len(body.Daily.TempMax) > 0 {
		report.High = body.Daily.TempMax[0]
	}
	if len(body.Daily.TempMin) > 0 {
		report.Low = body.Daily.TempMin[0]
	}
	return report, nil
}

type condition struct {
	zh, en, icon string
}

var conditions = map[int]condition{
	0:  {"晴", "Clear sky", "☀️"},
	1:  {"晴间多云", "Mainly clear", "🌤️"},
	2:  {"多云", "Partly cloudy", "⛅"},
	3:  {"阴", "Overcast", "☁️"},
	45: {"雾", "Foggy", "🌫️"},
	48: {"雾", "Foggy", "🌫️"},
	51: {"毛毛雨", "Light drizzle", "🌦️"},
	53: {"毛毛雨", "Moderate drizzle", "🌦️"},
	55: {"毛毛雨", "Dense drizzle", "🌧️"},
	56: {"冻毛毛雨", "Freezing drizzle", "🌧️"},
	57: {"冻毛毛雨", "Freezing drizzle", "🌧️"},
	61: {"小雨", "Slight rain", "🌦️"},
	63: {"中雨", "Moderate rain", "🌧️"},
	65: {"大雨", "Heavy rain", "🌧️"},
	66: {"冻雨", "Freezing rain", "🌧️"},
	67: {"冻雨", "Freezing rain", "🌧️"},
	71: {"小雪", "Slight snow", "🌨️"},
	73: {"中雪", "Moderate snow", "🌨️"},
	75: {"大雪", "Heavy snow", "❄️"},
	77: {"雪粒", "Snow grains", "❄️"},
	80: {"阵雨", "Slight showers", "🌦️"},
	81: {"阵雨", "Moderate showers", "🌧️"},
	82: {"强阵雨", "Violent showers", "⛈️"},
	85: {"阵雪", "Slight snow showers", "🌨️"},
	86: {"强阵雪", "Heavy snow showers", "❄️"},
	95: {"雷阵雨", "Thunderstorm", "⛈️"},
	96: {"雷阵雨伴冰雹", "Thunderstorm with hail", "⛈️"},
	99: {"雷阵雨伴冰雹", "Thunderstorm with hail", "⛈️"},
}

// Describe maps a WMO weather code to a description and emoji icon.
func Describe(code int, lang string) (string, string) {
	c, ok := conditions[code]
	if !ok {
		c = condition{config.UnknownText, "Unknown", "🌡️"}
	}
	if lang == "en" {
		return c.en, c.icon
	}
	return c.zh, c.icon
}
