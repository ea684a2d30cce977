package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-lunar-birthday/internal/birthday"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// ImportSource points at a vCard file or URL. URL wins when both are set.
type ImportSource struct {
	Path string
	URL  string
	User string
	Pass string
}

// Importer turns vCards into birthday drafts. Cards carrying X-LUNAR-BIRTHDAY
// (MM-DD) are taken as is; otherwise a BDAY with a known year is converted
// to its lunar month/day.
type Importer struct {
	Lunar   Converter
	Fetcher Fetcher
}

// Read parses the source and returns one draft per usable card.
func (im *Importer) Read(ctx context.Context, src ImportSource) ([]birthday.Draft, error) {
	reader, err := im.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	return im.decode(ctx, reader)
}

func (im *Importer) open(ctx context.Context, src ImportSource) (io.ReadCloser, error) {
	if src.URL != "" {
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src.URL, src.User, src.Pass)
	}
	if src.Path == "" {
		return nil, errors.New(config.ErrLocalPathEmpty)
	}
	return os.Open(src.Path)
}

func (im *Importer) decode(ctx context.Context, r io.Reader) ([]birthday.Draft, error) {
	log := slog.With(config.LogKeyComponent, config.CompImport)
	src := &sourceReader{r: r}
	decoder := vcard.NewDecoder(src)
	processed := 0

	var drafts []birthday.Draft
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if src.err != nil {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardRead, src.err)
			}
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			// Keep going; one broken card should not lose the rest.
			continue
		}
		processed++

		month, day, ok := im.lunarDate(ctx, card)
		if !ok {
			continue
		}
		drafts = append(drafts, birthday.Draft{
			Name:       cardName(card),
			LunarMonth: month,
			LunarDay:   day,
		})
	}

	log.Info(config.MsgImportDone,
		config.LogKeyTotal, processed,
		config.LogKeyFound, len(drafts),
	)
	return drafts, nil
}

// sourceReader records the first failure of the underlying reader so that
// transport errors end the import instead of being skipped as bad cards.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

func (im *Importer) lunarDate(ctx context.Context, card vcard.Card) (int, int, bool) {
	if f := card.Get(config.VCardLunarBirthday); f != nil && f.Value != "" {
		var m, d int
		v := strings.TrimPrefix(strings.TrimSpace(f.Value), "--")
		if _, err := fmt.Sscanf(v, config.FormatMonthDay, &m, &d); err == nil &&
			m >= config.MinLunarMonth && m <= config.MaxLunarMonth &&
			d >= config.MinLunarDay && d <= config.MaxLunarDay {
			return m, d, true
		}
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompImport,
			config.LogKeyValue, f.Value)
		return 0, 0, false
	}

	bday := card.Get(config.VCardBDAY)
	if bday == nil || bday.Value == "" {
		return 0, 0, false
	}

	// Without a year there is no way to know the lunar date.
	date, yearKnown, err := parseDate(bday.Value)
	if err != nil || !yearKnown {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompImport,
			config.LogKeyValue, bday.Value)
		return 0, 0, false
	}

	info, ok := im.Lunar.SolarToLunar(ctx, date).Info()
	if !ok {
		return 0, 0, false
	}
	// A leap-month birth is celebrated in the regular month of the same number.
	return info.Month, info.Day, true
}

// cardName prefers FN (Formatted) over N (Structured).
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

// parseDate handles various vCard date formats.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (Year unknown), pinned to a leap year so Feb 29 survives.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
