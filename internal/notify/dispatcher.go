// Package notify delivers birthday wishes, reminders and almanac messages
// through the chat platform and to connected clients.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
)

// Dispatcher sends messages through the chat platform. Every Send method is
// best-effort: failures are logged and reported as false, never retried.
type Dispatcher struct {
	platform config.PlatformSettings
	msgs     *Messages
	client   *http.Client
	sink     EventSink
	now      func() time.Time

	push  atomic.Bool
	group atomic.Bool

	subscribe   bool
	work        bool
	almanac     bool
	batchDelay  time.Duration
	callTimeout time.Duration

	token     tokenCache
	workToken tokenCache
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithSink publishes every payload to s.
func WithSink(s EventSink) Option {
	return func(d *Dispatcher) { d.sink = s }
}

// WithClock replaces time.Now for token expiry and message timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithBatchDelay sets the pause between SendBatch messages.
func WithBatchDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.batchDelay = delay }
}

// NewDispatcher builds a dispatcher from the platform credentials and feature toggles.
func NewDispatcher(platform config.PlatformSettings, features config.FeatureSettings, msgs *Messages, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		platform:    platform,
		msgs:        msgs,
		client:      &http.Client{Timeout: config.PlatformCallTimeout},
		sink:        nopSink{},
		now:         time.Now,
		subscribe:   features.SubscribeMessage,
		work:        features.WorkWechat && platform.WorkConfigured(),
		almanac:     features.LunarCalendar,
		batchDelay:  config.DefaultBatchDelay,
		callTimeout: config.PlatformCallTimeout,
	}
	d.push.Store(features.Push)
	d.group.Store(features.GroupMessage)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EnableFeature flips a runtime toggle ("push" or "groupMessage").
func (d *Dispatcher) EnableFeature(feature string, enabled bool) error {
	switch feature {
	case config.FeaturePush:
		d.push.Store(enabled)
	case config.FeatureGroupMessage:
		d.group.Store(enabled)
	default:
		return fmt.Errorf("%s: %q", config.ErrUnknownFeature, feature)
	}
	slog.Info(config.MsgFeatureToggled,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyFeature, feature,
		config.LogKeyValue, enabled,
	)
	return nil
}

// Features reports the current runtime toggles.
func (d *Dispatcher) Features() map[string]bool {
	return map[string]bool{
		config.FeaturePush:         d.push.Load(),
		config.FeatureGroupMessage: d.group.Load(),
	}
}

// Messages exposes the template renderer.
func (d *Dispatcher) Messages() *Messages {
	return d.msgs
}

// Token returns the cached access token, exchanging the app credentials when
// it is missing or expired.
func (d *Dispatcher) Token(ctx context.Context) (string, error) {
	token, refreshed, err := d.token.get(ctx, d.now(), func(ctx context.Context) (tokenResponse, error) {
		var resp tokenResponse
		err := d.call(ctx, d.platform.APIBase, config.PathToken, url.Values{
			config.ParamGrantType: {config.GrantClientCreds},
			config.ParamAppID:     {d.platform.AppID},
			config.ParamSecret:    {d.platform.AppSecret},
		}, nil, &resp)
		return resp, err
	})
	if refreshed {
		slog.DebugContext(ctx, config.MsgTokenRefreshed, config.LogKeyComponent, config.CompNotify)
	}
	return token, err
}

// InvalidateToken drops the cached tokens.
func (d *Dispatcher) InvalidateToken() {
	d.token.reset()
	d.workToken.reset()
}

func (d *Dispatcher) workAccessToken(ctx context.Context) (string, error) {
	token, _, err := d.workToken.get(ctx, d.now(), func(ctx context.Context) (tokenResponse, error) {
		var resp tokenResponse
		err := d.call(ctx, d.platform.WorkAPIBase, config.PathWorkToken, url.Values{
			config.ParamCorpID:     {d.platform.CorpID},
			config.ParamCorpSecret: {d.platform.CorpSecret},
		}, nil, &resp)
		return resp, err
	})
	return token, err
}

// SendGroupMessage posts text to groupID, or to the first configured group
// when groupID is empty.
func (d *Dispatcher) SendGroupMessage(ctx context.Context, text, groupID string) bool {
	log := slog.With(config.LogKeyComponent, config.CompNotify)

	if !d.group.Load() {
		log.DebugContext(ctx, config.MsgGroupDisabled)
		return false
	}
	if groupID == "" && len(d.platform.GroupIDs) > 0 {
		groupID = d.platform.GroupIDs[0]
	}
	if groupID == "" {
		log.WarnContext(ctx, config.ErrNoGroup)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	err := d.sendWithToken(ctx, config.PathCustomSend, customMessage{
		ToUser:  groupID,
		MsgType: config.MsgTypeText,
		Text:    textContent{Content: text},
	})
	if err != nil {
		logFailure(ctx, log, config.MsgGroupFailed, err, config.LogKeyGroup, groupID)
		return false
	}
	log.InfoContext(ctx, config.MsgGroupSent, config.LogKeyGroup, groupID)
	return true
}

// SendUserNotification delivers p through the subscription channel and, when
// corp credentials are configured, the work channel. It is also published to
// the event sink. The result is true only when every attempted channel succeeded.
func (d *Dispatcher) SendUserNotification(ctx context.Context, p Payload) bool {
	log := slog.With(config.LogKeyComponent, config.CompNotify)
	d.sink.Publish(ctx, p)

	if !d.push.Load() {
		log.DebugContext(ctx, config.MsgPushDisabled, config.LogKeyCategory, p.Category)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, d.callTimeout)
	defer cancel()

	attempted, ok := false, true
	if d.subscribe {
		attempted = true
		ok = d.sendSubscribe(ctx, log, p) && ok
	}
	if d.work {
		attempted = true
		ok = d.sendWork(ctx, log, p) && ok
	}
	return attempted && ok
}

func (d *Dispatcher) sendSubscribe(ctx context.Context, log *slog.Logger, p Payload) bool {
	if p.UserID == "" {
		log.WarnContext(ctx, config.MsgSubscribeFailed,
			config.LogKeyCategory, p.Category,
			config.LogKeyError, config.ErrNoRecipient,
		)
		return false
	}
	err := d.sendWithToken(ctx, config.PathSubscribeSend, subscribeMessage{
		ToUser:     p.UserID,
		TemplateID: d.platform.TemplateID,
		Page:       d.platform.TemplatePage,
		Data: map[string]templateValue{
			"thing1": {Value: truncate(p.Title, config.SubscribeThingMax)},
			"thing2": {Value: truncate(p.Body, config.SubscribeThingMax)},
			"time3":  {Value: d.now().Format(config.FormatSubscribeTime)},
		},
	})
	if err != nil {
		logFailure(ctx, log, config.MsgSubscribeFailed, err, config.LogKeyUser, p.UserID)
		return false
	}
	log.InfoContext(ctx, config.MsgSubscribeSent,
		config.LogKeyUser, p.UserID,
		config.LogKeyCategory, p.Category,
	)
	return true
}

func (d *Dispatcher) sendWork(ctx context.Context, log *slog.Logger, p Payload) bool {
	token, err := d.workAccessToken(ctx)
	if err != nil {
		logFailure(ctx, log, config.MsgWorkFailed, err)
		return false
	}

	var agent any = d.platform.AgentID
	if n, err := strconv.Atoi(d.platform.AgentID); err == nil {
		agent = n
	}
	var res apiResult
	err = d.call(ctx, d.platform.WorkAPIBase, config.PathWorkSend,
		url.Values{config.ParamAccessToken: {token}},
		workMessage{
			ToUser:  config.WorkWechatAllUsers,
			MsgType: config.MsgTypeText,
			AgentID: agent,
			Text:    textContent{Content: p.Title + "\n" + p.Body},
		}, &res)
	if err == nil {
		err = res.err()
	}
	if err != nil {
		logFailure(ctx, log, config.MsgWorkFailed, err)
		return false
	}
	log.InfoContext(ctx, config.MsgWorkSent, config.LogKeyCategory, p.Category)
	return true
}

// SendBirthdayWishes posts the birthday message to every configured group and
// the record's own group, then sends one user notification. Individual
// failures do not stop the remaining sends.
func (d *Dispatcher) SendBirthdayWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo) {
	text := d.msgs.BirthdayMessage(rec, info, d.almanac && !info.Unknown)
	d.sendWishes(ctx, rec, text, d.msgs.T(config.TKeyNotifBody, map[string]any{"Name": rec.Name}))
}

// SendBelatedWishes is SendBirthdayWishes for a day that has already passed.
func (d *Dispatcher) SendBelatedWishes(ctx context.Context, rec birthday.Record, info lunar.DayInfo) {
	body := d.msgs.T(config.TKeyNotifBelated, map[string]any{
		"Name": rec.Name,
		"Date": info.Date.Format(config.DateKeyFormat),
	})
	d.sendWishes(ctx, rec, d.msgs.BelatedMessage(rec, info), body)
}

func (d *Dispatcher) sendWishes(ctx context.Context, rec birthday.Record, text, body string) {
	sent := 0
	for _, g := range d.targetGroups(rec.GroupID) {
		if d.SendGroupMessage(ctx, text, g) {
			sent++
		}
	}

	notified := d.SendUserNotification(ctx, Payload{
		Title:    d.msgs.T(config.TKeyNotifTitle, nil),
		Body:     body,
		UserID:   rec.UserID,
		GroupID:  rec.GroupID,
		Category: config.CategoryBirthday,
		RecordID: rec.ID,
	})

	slog.InfoContext(ctx, config.MsgWishesSent,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyID, rec.ID,
		config.LogKeyName, rec.Name,
		config.LogKeyCount, sent,
		config.LogKeyFound, notified,
	)
}

// SendReminder notifies the record's user that the birthday is daysUntil days away.
func (d *Dispatcher) SendReminder(ctx context.Context, rec birthday.Record, daysUntil int, on time.Time) bool {
	ok := d.SendUserNotification(ctx, Payload{
		Title: d.msgs.T(config.TKeyReminderTitle, nil),
		Body: d.msgs.T(config.TKeyReminderBody, map[string]any{
			"Name":      rec.Name,
			"Days":      daysUntil,
			"LunarDate": d.msgs.MonthDay(rec.LunarMonth, rec.LunarDay),
			"Date":      on.Format(config.DateKeyFormat),
		}),
		UserID:   rec.UserID,
		GroupID:  rec.GroupID,
		Category: config.CategoryReminder,
		RecordID: rec.ID,
	})
	slog.InfoContext(ctx, config.MsgReminderSent,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyID, rec.ID,
		config.LogKeyDays, daysUntil,
		config.LogKeyFound, ok,
	)
	return ok
}

// SendLunarInfo posts the almanac message to every configured group.
func (d *Dispatcher) SendLunarInfo(ctx context.Context, info lunar.DayInfo) bool {
	if !d.almanac {
		slog.DebugContext(ctx, config.ErrDisabledByFeature,
			config.LogKeyComponent, config.CompNotify,
			config.LogKeyCategory, config.CategoryAlmanac,
		)
		return false
	}

	text := d.msgs.AlmanacMessage(info)
	d.sink.Publish(ctx, Payload{
		Title:    d.msgs.T(config.TKeyAlmanacHeader, map[string]any{"Date": info.Date.Format(config.DateKeyFormat)}),
		Body:     text,
		Category: config.CategoryAlmanac,
	})

	groups := d.targetGroups("")
	if len(groups) == 0 {
		return d.SendGroupMessage(ctx, text, "")
	}
	ok := true
	for _, g := range groups {
		ok = d.SendGroupMessage(ctx, text, g) && ok
	}
	slog.InfoContext(ctx, config.MsgAlmanacSent,
		config.LogKeyComponent, config.CompNotify,
		config.LogKeyDate, info.Date.Format(config.DateKeyFormat),
		config.LogKeyFound, ok,
	)
	return ok
}

// SendBatch posts messages one by one to groupID with a pause between sends.
// Cancelling ctx marks the unsent messages as failed.
func (d *Dispatcher) SendBatch(ctx context.Context, messages []string, groupID string) []bool {
	results := make([]bool, len(messages))
	for i, msg := range messages {
		if i > 0 && d.batchDelay > 0 {
			select {
			case <-ctx.Done():
				slog.WarnContext(ctx, config.MsgBatchAborted,
					config.LogKeyComponent, config.CompNotify,
					config.LogKeyCount, i,
					config.LogKeyTotal, len(messages),
				)
				return results
			case <-time.After(d.batchDelay):
			}
		}
		results[i] = d.SendGroupMessage(ctx, msg, groupID)
	}
	return results
}

// targetGroups is the configured groups plus extra when it is not among them.
func (d *Dispatcher) targetGroups(extra string) []string {
	groups := slices.Clone(d.platform.GroupIDs)
	if extra != "" && !slices.Contains(groups, extra) {
		groups = append(groups, extra)
	}
	return groups
}

func (d *Dispatcher) sendWithToken(ctx context.Context, path string, body any) error {
	token, err := d.Token(ctx)
	if err != nil {
		return err
	}
	var res apiResult
	if err := d.call(ctx, d.platform.APIBase, path, url.Values{config.ParamAccessToken: {token}}, body, &res); err != nil {
		return err
	}
	return res.err()
}

func logFailure(ctx context.Context, log *slog.Logger, msg string, err error, args ...any) {
	var perr *PlatformError
	if errors.As(err, &perr) {
		args = append(args, config.LogKeyErrCode, perr.Code, config.LogKeyErrMsg, perr.Msg)
	}
	args = append(args, config.LogKeyError, err)
	log.WarnContext(ctx, msg, args...)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

type textContent struct {
	Content string `json:"content"`
}

type customMessage struct {
	ToUser  string      `json:"touser"`
	MsgType string      `json:"msgtype"`
	Text    textContent `json:"text"`
}

type templateValue struct {
	Value string `json:"value"`
}

type subscribeMessage struct {
	ToUser     string                   `json:"touser"`
	TemplateID string                   `json:"template_id"`
	Page       string                   `json:"page"`
	Data       map[string]templateValue `json:"data"`
}

type workMessage struct {
	ToUser  string      `json:"touser"`
	MsgType string      `json:"msgtype"`
	AgentID any         `json:"agentid"`
	Text    textContent `json:"text"`
}
