package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
	"github.com/tartampluch/go-lunar-birthday/internal/websocket"
)

// Records is the birthday store as the API uses it.
type Records interface {
	Add(ctx context.Context, d birthday.Draft) (birthday.Record, error)
	Update(ctx context.Context, id string, p birthday.Patch) (birthday.Record, error)
	Delete(ctx context.Context, id string) bool
	List() []birthday.Record
	Get(id string) (birthday.Record, bool)
	// Sync picks up changes written to the shared storage by other processes.
	Sync(ctx context.Context)
}

// Calendar is the lunar adapter as the API uses it.
type Calendar interface {
	SolarToLunar(ctx context.Context, date time.Time) lunar.Result
	Year(y int) (lunar.YearInfo, error)
}

// Sender is the notification side of the API.
type Sender interface {
	SendBirthdayWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo)
	EnableFeature(feature string, enabled bool) error
	Features() map[string]bool
}

// Broadcaster pushes record changes to live clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

// API serves the birthday list and the evaluator over JSON.
type API struct {
	Records   Records
	Evaluator *engine.Evaluator
	Lunar     Calendar
	Sender    Sender
	Events    Broadcaster // optional
	Clock     engine.Clock
	Location  *time.Location

	// UpcomingDays is the window used when the request does not set one.
	UpcomingDays int
	// OnChange runs after every successful mutation, e.g. to refresh the ICS feed.
	OnChange func(ctx context.Context)
}

type todayResponse struct {
	Date    string            `json:"date"`
	Lunar   lunar.DayInfo     `json:"lunar"`
	Records []birthday.Record `json:"records"`
}

type featureRequest struct {
	Enabled bool `json:"enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes returns the API router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(a.syncRecords)

	r.Route(config.RouteBirthdays, func(br chi.Router) {
		br.Get("/", a.listBirthdays)
		br.Post("/", a.createBirthday)
		br.Get(config.RouteBirthdayByID, a.getBirthday)
		br.Patch(config.RouteBirthdayByID, a.updateBirthday)
		br.Delete(config.RouteBirthdayByID, a.deleteBirthday)
		br.Post(config.RouteWishes, a.sendWishes)
	})

	r.Get(config.RouteToday, a.today)
	r.Get(config.RouteUpcoming, a.upcoming)
	r.Get(config.RouteDue, a.due)
	r.Get(config.RouteAlmanac, a.almanac)
	r.Get(config.RouteYear, a.year)

	r.Get(config.RouteFeatures, a.features)
	r.Put(config.RouteFeature, a.setFeature)

	return r
}

func (a *API) syncRecords(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.Records.Sync(r.Context())
		next.ServeHTTP(w, r)
	})
}

func (a *API) listBirthdays(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Records.List())
}

func (a *API) createBirthday(w http.ResponseWriter, r *http.Request) {
	var d birthday.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, config.ErrInvalidJSON)
		return
	}

	rec, err := a.Records.Add(r.Context(), d)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.changed(r.Context(), config.ActionCreated, rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) getBirthday(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.Records.Get(chi.URLParam(r, config.URLParamID))
	if !ok {
		writeError(w, http.StatusNotFound, config.ErrRecordNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) updateBirthday(w http.ResponseWriter, r *http.Request) {
	var p birthday.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, config.ErrInvalidJSON)
		return
	}

	rec, err := a.Records.Update(r.Context(), chi.URLParam(r, config.URLParamID), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.changed(r.Context(), config.ActionUpdated, rec.ID)
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) deleteBirthday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, config.URLParamID)
	if !a.Records.Delete(r.Context(), id) {
		writeError(w, http.StatusNotFound, config.ErrRecordNotFound)
		return
	}
	a.changed(r.Context(), config.ActionDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// sendWishes sends the birthday message for a record now, whatever the date.
func (a *API) sendWishes(w http.ResponseWriter, r *http.Request) {
	rec, ok := a.Records.Get(chi.URLParam(r, config.URLParamID))
	if !ok {
		writeError(w, http.StatusNotFound, config.ErrRecordNotFound)
		return
	}
	day, err := a.day(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	info := lunar.Display(a.Lunar.SolarToLunar(r.Context(), day), day)
	a.Sender.SendBirthdayWishes(r.Context(), rec, info)
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) today(w http.ResponseWriter, r *http.Request) {
	day, err := a.day(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := a.Evaluator.TodaysMatches(r.Context(), day)
	if err != nil {
		slog.WarnContext(r.Context(), config.MsgUnresolvedDay,
			config.LogKeyComponent, config.CompAPI,
			config.LogKeyError, err,
		)
	}
	if matches == nil {
		matches = []birthday.Record{}
	}
	writeJSON(w, http.StatusOK, todayResponse{
		Date:    day.Format(config.DateKeyFormat),
		Lunar:   lunar.Display(a.Lunar.SolarToLunar(r.Context(), day), day),
		Records: matches,
	})
}

func (a *API) upcoming(w http.ResponseWriter, r *http.Request) {
	day, err := a.day(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	window := a.UpcomingDays
	if raw := r.URL.Query().Get(config.QueryDays); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > config.MaxUpcomingDays {
			writeError(w, http.StatusBadRequest, config.ErrInvalidDays)
			return
		}
		window = n
	}

	out := a.Evaluator.UpcomingWithinWindow(r.Context(), day, window)
	if out == nil {
		out = []engine.Upcoming{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) due(w http.ResponseWriter, r *http.Request) {
	day, err := a.day(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := a.Evaluator.DueReminders(r.Context(), day)
	if out == nil {
		out = []engine.Due{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) almanac(w http.ResponseWriter, r *http.Request) {
	day, err := a.day(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lunar.Display(a.Lunar.SolarToLunar(r.Context(), day), day))
}

func (a *API) year(w http.ResponseWriter, r *http.Request) {
	y, err := strconv.Atoi(chi.URLParam(r, config.URLParamYear))
	if err != nil {
		writeError(w, http.StatusBadRequest, config.ErrInvalidYear)
		return
	}
	info, err := a.Lunar.Year(y)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *API) features(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Sender.Features())
}

func (a *API) setFeature(w http.ResponseWriter, r *http.Request) {
	var req featureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, config.ErrInvalidJSON)
		return
	}
	if err := a.Sender.EnableFeature(chi.URLParam(r, config.URLParamFeature), req.Enabled); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.Sender.Features())
}

// day is the ?date= parameter, or the current day in the configured location.
func (a *API) day(r *http.Request) (time.Time, error) {
	if raw := r.URL.Query().Get(config.QueryDate); raw != "" {
		d, err := time.Parse(config.DateKeyFormat, raw)
		if err != nil {
			return time.Time{}, errors.New(config.ErrInvalidDate)
		}
		return d, nil
	}
	return engine.CalendarDay(a.Clock, a.Location), nil
}

func (a *API) changed(ctx context.Context, action, id string) {
	if a.Events != nil {
		a.Events.Broadcast(websocket.NewMessage(config.EntityBirthday, action, id))
	}
	if a.OnChange != nil {
		a.OnChange(ctx)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, birthday.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, birthday.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, config.HTTPMsgInternalErr)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompAPI,
			config.LogKeyError, err,
		)
	}
}
