package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

const forecastBody = `{
	"daily": {
		"time": ["2023-06-22"],
		"temperature_2m_max": [31.4],
		"temperature_2m_min": [23.6],
		"weather_code": [63]
	}
}`

func TestDescribe(t *testing.T) {
	tests := []struct {
		code     int
		lang     string
		wantDesc string
		wantIcon string
	}{
		{0, "zh", "晴", "☀️"},
		{0, "en", "Clear sky", "☀️"},
		{63, "zh", "中雨", "🌧️"},
		{95, "en", "Thunderstorm", "⛈️"},
		{999, "en", "Unknown", "🌡️"},
		{999, "zh", config.UnknownText, "🌡️"},
	}

	for _, tt := range tests {
		desc, icon := Describe(tt.code, tt.lang)
		assert.Equal(t, tt.wantDesc, desc, "code %d (%s)", tt.code, tt.lang)
		assert.Equal(t, tt.wantIcon, icon, "code %d (%s)", tt.code, tt.lang)
	}
}

func TestReport_Temperature(t *testing.T) {
	r := Report{Low: 23.6, High: 31.4, Unit: "C"}
	assert.Equal(t, "24~31°C", r.Temperature())
}

func newTestService(t *testing.T, handler http.HandlerFunc, unit string) (*Service, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	svc := NewService(Config{Latitude: "31.23", Longitude: "121.47", TemperatureUnit: unit, Language: "zh"}).
		WithBaseURL(ts.URL)
	return svc, &calls
}

func TestService_Forecast(t *testing.T) {
	svc, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "31.23", q.Get("latitude"))
		assert.Equal(t, "121.47", q.Get("longitude"))
		assert.Equal(t, "2023-06-22", q.Get("start_date"))
		assert.Equal(t, "2023-06-22", q.Get("end_date"))
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		_, _ = w.Write([]byte(forecastBody))
	}, "")

	day := time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC)
	report, err := svc.Forecast(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, "2023-06-22", report.Date)
	assert.Equal(t, 63, report.Code)
	assert.Equal(t, "中雨", report.Condition)
	assert.Equal(t, "C", report.Unit)
	assert.InDelta(t, 31.4, report.High, 0.001)
	assert.InDelta(t, 23.6, report.Low, 0.001)

	_, err = svc.Forecast(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "Second call should hit the cache")
}

func TestService_Fahrenheit(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fahrenheit", r.URL.Query().Get("temperature_unit"))
		_, _ = w.Write([]byte(forecastBody))
	}, "fahrenheit")

	report, err := svc.Forecast(context.Background(), time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "F", report.Unit)
}

func TestService_StaleReportOnFailure(t *testing.T) {
	var failing atomic.Bool
	svc, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(forecastBody))
	}, "")

	now := time.Date(2023, 6, 22, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	day := time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC)

	_, err := svc.Forecast(context.Background(), day)
	require.NoError(t, err)

	failing.Store(true)
	now = now.Add(config.WeatherCacheTTL + time.Minute)

	report, err := svc.Forecast(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 63, report.Code)
	assert.Equal(t, int32(2), calls.Load())
}

func TestService_Errors(t *testing.T) {
	day := time.Date(2023, 6, 22, 0, 0, 0, 0, time.UTC)

	t.Run("NotConfigured", func(t *testing.T) {
		svc := NewService(Config{})
		assert.False(t, svc.Configured())
		_, err := svc.Forecast(context.Background(), day)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrWeatherFetch)
	})

	t.Run("ServerError", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, "")
		_, err := svc.Forecast(context.Background(), day)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("EmptyForecast", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"daily":{}}`))
		}, "")
		_, err := svc.Forecast(context.Background(), day)
		require.Error(t, err)
	})

	t.Run("BadJSON", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}, "")
		_, err := svc.Forecast(context.Background(), day)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrDecodeResponse)
	})
}
