package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Lunar-Birthday/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Lunar Birthday"
	AppID          = "com.github.tartampluch.go-lunar-birthday"
	KeyringService = "com.github.tartampluch.go-lunar-birthday"
	LogFileName    = "app.log"
	DBFileName     = "birthdays.db"
	DataDirName    = "data"
	EnvFileName    = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the file-backed store.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug       = "debug"
	FlagEnvFile     = "env-file"
	FlagDays        = "days"
	FlagDate        = "date"
	FlagName        = "name"
	FlagMonth       = "month"
	FlagDay         = "day"
	FlagUser        = "user"
	FlagGroup       = "group"
	FlagRemind      = "remind"
	FlagMessage     = "message"
	FlagDryRun      = "dry-run"
	FlagURL         = "url"
	FlagWebUser     = "web-user"
	FlagWebPass     = "web-pass"
	FlagDescDebug   = "Enable debug logging to stdout"
	FlagDescEnvFile = "Path to a .env file with settings"
	CmdName         = "go-lunar-birthday"
	CmdServe        = "serve"

	MsgVersionOutput = "%s version %s (commit: %s, built: %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvPrefix = "LUNAR_BIRTHDAY_"

	// Chat platform
	EnvAppID       = EnvPrefix + "APP_ID"
	EnvAppSecret   = EnvPrefix + "APP_SECRET"
	EnvCorpID      = EnvPrefix + "CORP_ID"
	EnvCorpSecret  = EnvPrefix + "CORP_SECRET"
	EnvAgentID     = EnvPrefix + "AGENT_ID"
	EnvGroupIDs    = EnvPrefix + "GROUP_IDS"
	EnvTemplateID  = EnvPrefix + "TEMPLATE_ID"
	EnvTemplatePg  = EnvPrefix + "TEMPLATE_PAGE"
	EnvAPIBase     = EnvPrefix + "API_BASE"
	EnvWorkAPIBase = EnvPrefix + "WORK_API_BASE"

	// Feature toggles
	EnvEnablePush         = EnvPrefix + "ENABLE_PUSH"
	EnvEnableGroupMessage = EnvPrefix + "ENABLE_GROUP_MESSAGE"
	EnvEnableSubscribe    = EnvPrefix + "ENABLE_SUBSCRIBE_MESSAGE"
	EnvEnableWorkWechat   = EnvPrefix + "ENABLE_WORK_WECHAT"
	EnvEnableReminder     = EnvPrefix + "ENABLE_BIRTHDAY_REMINDER"
	EnvEnableAutoWishes   = EnvPrefix + "ENABLE_AUTO_SEND_WISHES"
	EnvEnableLunar        = EnvPrefix + "ENABLE_LUNAR_CALENDAR"
	EnvEnableWeather      = EnvPrefix + "ENABLE_WEATHER"
	EnvEnableCache        = EnvPrefix + "ENABLE_CACHE"
	EnvEnableDailyAlmanac = EnvPrefix + "ENABLE_DAILY_ALMANAC"

	// Reminder & scheduling
	EnvReminderDays = EnvPrefix + "REMINDER_DAYS"
	EnvInterval     = EnvPrefix + "CHECK_INTERVAL"
	EnvCatchUpDays  = EnvPrefix + "CATCH_UP_DAYS"
	EnvBatchDelay   = EnvPrefix + "BATCH_DELAY"
	EnvUpcomingDays = EnvPrefix + "UPCOMING_DAYS"
	EnvReminderTime = EnvPrefix + "REMINDER_TIME"
	EnvTimezone     = EnvPrefix + "TIMEZONE"
	EnvLanguage     = EnvPrefix + "LANGUAGE"

	// Weather
	EnvWeatherLat   = EnvPrefix + "WEATHER_LAT"
	EnvWeatherLon   = EnvPrefix + "WEATHER_LON"
	EnvWeatherUnits = EnvPrefix + "WEATHER_UNITS"

	// Storage & server
	EnvStorage  = EnvPrefix + "STORAGE"
	EnvDataPath = EnvPrefix + "DATA_PATH"
	EnvAddr     = EnvPrefix + "ADDR"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	CronEveryFormat = "@every %s"
	JobReminders    = "reminders"
	JobCalendar     = "calendar"

	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"

	DefaultStorage      = StorageSQLite
	DefaultAddr         = "127.0.0.1:18081"
	DefaultLanguage     = "zh"
	DefaultInterval     = 1 * time.Hour
	DefaultCatchUpDays  = 3
	DefaultBatchDelay   = 1 * time.Second
	DefaultUpcomingDays = 30
	MaxUpcomingDays     = 366
	LunarCacheSize      = 1024
	DefaultReminderTime = "09:00"
	ReminderTimeLayout  = "15:04"
	DefaultWeatherUnits = "celsius"
	DefaultAPIBase      = "https://api.weixin.qq.com"
	DefaultWorkAPIBase  = "https://qyapi.weixin.qq.com"
	DefaultTemplatePage = "pages/index/index"
	WorkWechatAllUsers  = "@all"

	ListSeparator = ","
)

// DefaultReminderDays is applied to records created without explicit lead days.
var DefaultReminderDays = []int{0, 1, 7}

// SupportedLanguages lists the message template locales shipped in notify/locales.
var SupportedLanguages = []string{"zh", "en"}

// -----------------------------------------------------------------------------
// Storage Keys
// -----------------------------------------------------------------------------

const (
	StorageKeyBirthdays     = "birthdays"
	StorageKeyLastEvaluated = "last_evaluated_date"
)

// -----------------------------------------------------------------------------
// Lunar Calendar & Almanac
// -----------------------------------------------------------------------------

const (
	MinLunarMonth = 1
	MaxLunarMonth = 12
	MinLunarDay   = 1
	MaxLunarDay   = 30

	// Message size bounds for the almanac lists.
	MaxSuitable   = 8
	MaxUnsuitable = 6

	UnknownText        = "未知"
	UnknownLunarDate   = "获取失败"
	UnknownDescription = "今日宜静不宜动"

	FormatLunarDate = "%s年%s月%s"
	FormatMonthDay  = "%d-%d"
	FormatLunarMD   = "%02d-%02d"

	// DateKeyFormat keys caches, watermarks and CLI/API date parameters.
	DateKeyFormat = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Chat Platform API
// -----------------------------------------------------------------------------

const (
	PathToken         = "/cgi-bin/token"
	PathCustomSend    = "/cgi-bin/message/custom/send"
	PathSubscribeSend = "/cgi-bin/message/subscribe/send"
	PathWorkToken     = "/cgi-bin/gettoken"
	PathWorkSend      = "/cgi-bin/message/send"

	ParamGrantType    = "grant_type"
	ParamAppID        = "appid"
	ParamSecret       = "secret"
	ParamCorpID       = "corpid"
	ParamCorpSecret   = "corpsecret"
	ParamAccessToken  = "access_token"
	GrantClientCreds  = "client_credential"
	MsgTypeText       = "text"
	ErrCodeSuccess    = 0
	SubscribeThingMax = 20 // rune limit of "thing" fields in subscription messages

	// TokenSafetyMargin is subtracted from the platform-reported expiry.
	TokenSafetyMargin = 300 * time.Second

	FormatSubscribeTime = "2006-01-02 15:04"
)

// -----------------------------------------------------------------------------
// Notification Categories (client-side routing)
// -----------------------------------------------------------------------------

const (
	CategoryBirthday = "birthday"
	CategoryReminder = "reminder"
	CategoryAlmanac  = "almanac"
	CategoryToast    = "toast"

	// Live event envelope (websocket)
	EventNotification = "notification"
	EntityBirthday    = "birthday"
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	WSSendBuffer      = 16
	WSPingInterval    = 30 * time.Second
)

// -----------------------------------------------------------------------------
// Runtime Feature Names
// -----------------------------------------------------------------------------

const (
	FeaturePush         = "push"
	FeatureGroupMessage = "groupMessage"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWishHeadline   = "wish_headline"         // Requires Name
	TKeyWishBelated    = "wish_belated_headline" // Requires Name, Date
	TKeyWishBlessing   = "wish_blessing"         // Requires Name
	TKeyWishSunshine   = "wish_sunshine"
	TKeyWishAlmanac    = "wish_almanac_header"
	TKeyLineLunar      = "line_lunar"      // Requires Value
	TKeyLineSuitable   = "line_suitable"   // Requires Value
	TKeyLineUnsuitable = "line_unsuitable" // Requires Value
	TKeyWishGoodDay    = "wish_good_day"
	TKeyWishCustom     = "wish_custom" // Requires Message
	TKeyNotifTitle     = "notif_birthday_title"
	TKeyNotifBody      = "notif_birthday_body" // Requires Name
	TKeyNotifBelated   = "notif_belated_body"  // Requires Name, Date
	TKeyReminderTitle  = "notif_reminder_title"
	TKeyReminderBody   = "notif_reminder_body" // Requires Name, Days, LunarDate
	TKeyAlmanacHeader  = "almanac_header"      // Requires Date
	TKeyLineZodiac     = "line_zodiac"         // Requires Value
	TKeyLineConstell   = "line_constellation"  // Requires Value
	TKeyLineDesc       = "line_description"    // Requires Value
	TKeyLineFestivals  = "line_festivals"      // Requires Value
	TKeyLineWeather    = "line_weather"        // Requires Condition, Temperature
	TKeyListSeparator  = "list_separator"
	TKeyOperationFail  = "toast_operation_failed"
	TKeyRecordMonthDay = "record_lunar_month_day" // Requires Month, Day
	TKeyEventSummary   = "event_summary"          // Requires Name, Month, Day
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	PlatformCallTimeout = 10 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	WeatherCacheTTL     = 30 * time.Minute
	WeatherAPIBase      = "https://api.open-meteo.com/v1/forecast"
	SQLiteBusyTimeoutMS = 5000
	SQLiteDriver        = "sqlite"
	SQLiteDSNFormat     = "%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)"
	GooseDialect        = "sqlite3"
	MigrationsDir       = "migrations"
)

// -----------------------------------------------------------------------------
// HTTP Routes, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteHealth       = "/health"
	RouteCalendar     = "/calendar.ics"
	RouteEvents       = "/ws"
	RouteAPI          = "/api"
	RouteBirthdays    = "/birthdays"
	RouteBirthdayByID = "/{id}"
	RouteToday        = "/today"
	RouteUpcoming     = "/upcoming"
	RouteDue          = "/due"
	RouteWishes       = "/{id}/wishes"
	RouteAlmanac      = "/almanac"
	RouteYear         = "/years/{year}"
	RouteFeatures     = "/features"
	RouteFeature      = "/features/{feature}"
	URLParamYear      = "year"
	URLParamFeature   = "feature"
	URLParamID        = "id"
	QueryDays         = "days"
	QueryDate         = "date"

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.5"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Lunar Birthday//Engine//EN"
	ICalCalName   = "Lunar Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "golunarbirthday"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY          = "BDAY"
	VCardFN            = "FN"
	VCardN             = "N"
	VCardLunarBirthday = "X-LUNAR-BIRTHDAY"

	DefaultICalRefresh = 1 * time.Hour
	FormatUID          = "%s-%d@%s"
	FormatTrigger      = "-P%dD"
	FallbackSummary    = "Lunar birthday: %s (%s)"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DefaultLeapYear     = 2000

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
	FallbackName  = "Unknown"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrAppFailed         = "application failed unexpectedly"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrConfigDir         = "could not determine user config dir"
	ErrCreateDir         = "could not create app directory"
	ErrSettingsParse     = "invalid setting"
	ErrTimezone          = "unknown timezone"
	ErrStorageOpen       = "failed to open storage"
	ErrStorageUnknown    = "unsupported storage backend"
	ErrStorageRead       = "failed to read stored list"
	ErrStorageWrite      = "failed to write stored list"
	ErrKeyNotFound       = "key not found"
	ErrMigrations        = "failed to run storage migrations"
	ErrMigrationDialect  = "failed to set migration dialect"
	ErrMigrationApply    = "failed to apply migrations"
	ErrKVRead            = "failed to read key"
	ErrKVWrite           = "failed to write key"
	ErrRecordNotFound    = "birthday record not found"
	ErrRecordName        = "name must not be empty"
	ErrRecordMonth       = "lunar month must be between 1 and 12"
	ErrRecordDay         = "lunar day must be between 1 and 30"
	ErrRecordLeadDays    = "reminder days must be non-negative"
	ErrRecordDecode      = "failed to decode stored birthdays"
	ErrRecordInvalid     = "invalid birthday record"
	ErrLunarConvert      = "lunar conversion failed"
	ErrLunarResolve      = "lunar date does not exist in year"
	ErrUnresolvable      = "next lunar birthday could not be resolved"
	ErrTokenExchange     = "access token exchange failed"
	ErrPlatformCall      = "chat platform call failed"
	ErrPlatformCode      = "chat platform returned error code"
	ErrNoGroup           = "no target group configured"
	ErrEncodeRequest     = "failed to encode request body"
	ErrDecodeResponse    = "failed to decode response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrWeatherFetch      = "weather request failed"
	ErrSchedulerSpec     = "invalid scheduler interval"
	ErrPipelineRun       = "reminder pipeline failed"
	ErrWatermarkRead     = "failed to read last evaluated date"
	ErrWatermarkWrite    = "failed to write last evaluated date"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrAddrRequired      = "server address is required"
	ErrWriteResp         = "failed to write response body"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrVCardRead         = "failed to read vCard stream"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrDateParse         = "unable to parse date"
	ErrLocalPathEmpty    = "configuration error: import path is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrFetchRequest      = "failed to create request"
	ErrFetchNetwork      = "network error during fetch"
	ErrFetchStatus       = "server returned unexpected status"
	ErrInvalidJSON       = "invalid json"
	ErrInvalidDays       = "days must be between 1 and 366"
	ErrInvalidDate       = "date must be YYYY-MM-DD"
	ErrInvalidYear       = "year must be an integer"
	ErrBadArgs           = "invalid arguments"
	ErrSendFailed        = "one or more sends failed"
	ErrKeyringLookup     = "keyring lookup failed"
	ErrDisabledByFeature = "disabled by feature toggle"
	ErrReminderTime      = "reminder time must be HH:MM"
	ErrUnknownFeature    = "unknown feature"
	ErrNoRecipient       = "notification has no recipient"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgNotFound     = "not found"
	HTTPMsgInternalErr  = "internal error"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgSettingsLoaded   = "Settings loaded"
	MsgEnvFileMissing   = "No .env file found"
	MsgStoreLoaded      = "Birthday list loaded"
	MsgStoreSaved       = "Birthday list saved"
	MsgStoreSyncFailed  = "Could not re-read stored list, keeping the loaded one"
	MsgSQLiteReady      = "SQLite store ready"
	MsgRecordAdded      = "Birthday added"
	MsgRecordUpdated    = "Birthday updated"
	MsgRecordDeleted    = "Birthday deleted"
	MsgLunarFallback    = "Lunar conversion failed, using fallback"
	MsgLunarCacheHit    = "Lunar cache hit"
	MsgUnresolvedRecord = "Skipping record with unresolvable lunar date"
	MsgUnresolvedDay    = "Skipping day with unresolvable lunar date"
	MsgTokenRefreshed   = "Access token refreshed"
	MsgGroupSent        = "Group message sent"
	MsgGroupFailed      = "Group message failed"
	MsgGroupDisabled    = "Group messages disabled"
	MsgPushDisabled     = "Push notifications disabled"
	MsgSubscribeSent    = "Subscription message sent"
	MsgSubscribeFailed  = "Subscription message failed"
	MsgWorkSent         = "Work message sent"
	MsgWorkFailed       = "Work message failed"
	MsgWishesSent       = "Birthday wishes dispatched"
	MsgReminderSent     = "Birthday reminder dispatched"
	MsgAlmanacSent      = "Almanac message dispatched"
	MsgFeatureToggled   = "Feature toggled"
	MsgBatchAborted     = "Batch send aborted"
	MsgPipelineStart    = "Reminder check started"
	MsgPipelineDone     = "Reminder check finished"
	MsgPipelineSkip     = "Day already evaluated"
	MsgCatchUp          = "Catching up missed days"
	MsgSchedulerStart   = "Scheduler started"
	MsgSchedulerStop    = "Scheduler stopping due to context cancellation"
	MsgJobDone          = "Scheduled job finished"
	MsgJobFailed        = "Scheduled job failed"
	MsgJobSkipped       = "Scheduled job still running, tick skipped"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgGenSuccess       = "iCalendar generation successful"
	MsgBdayToday        = "Lunar birthday today"
	MsgCacheUpdated     = "Calendar cache updated"
	MsgCalendarFailed   = "Calendar refresh failed"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping card without usable birthday"
	MsgImportDone       = "vCard import finished"
	MsgFetchStatus      = "Address book server returned error status"
	MsgFetchStarted     = "Address book downloading"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Invalid locale filename format"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgWeatherFailed    = "Weather unavailable"
	MsgKeyringMiss      = "Secret not found in keyring"
	MsgWSAccept         = "WebSocket accept failed"
	MsgWSMarshal        = "WebSocket marshal failed"
	MsgWSDropped        = "WebSocket client buffer full, message dropped"
	MsgOperationFailed  = "操作失败"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyInterval  = "interval"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyID        = "id"
	LogKeyGroup     = "group"
	LogKeyUser      = "user"
	LogKeyDate      = "date"
	LogKeyDays      = "days"
	LogKeyLunar     = "lunar"
	LogKeyErrCode   = "errcode"
	LogKeyErrMsg    = "errmsg"
	LogKeyCategory  = "category"
	LogKeyBackend   = "backend"
	LogKeyPath      = "path"
	LogKeyDuration  = "duration_ms"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total"
	LogKeyFound     = "found"
	LogKeyFeature   = "feature"
	LogKeyClients   = "clients"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyETag      = "etag"
	LogKeyMethod    = "method"
	LogKeyToday     = "today"
	LogKeyValue     = "value"
	LogKeyJob       = "job"
	LogKeyCommand   = "command"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain      = "main"
	CompCLI       = "cli"
	CompSettings  = "settings"
	CompStorage   = "storage"
	CompHost      = "host"
	CompStore     = "store"
	CompLunar     = "lunar"
	CompEngine    = "engine"
	CompPipeline  = "pipeline"
	CompNotify    = "notify"
	CompI18n      = "i18n"
	CompWeather   = "weather"
	CompScheduler = "scheduler"
	CompServer    = "server"
	CompAPI       = "api"
	CompWebSocket = "websocket"
	CompFetcher   = "fetcher"
	CompImport    = "import"
)
