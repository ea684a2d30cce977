package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/engine"
	"github.com/tartampluch/go-lunar-birthday/internal/lunar"
)

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

const addressBook = `BEGIN:VCARD
VERSION:3.0
FN:Grandma
X-LUNAR-BIRTHDAY:08-15
END:VCARD
BEGIN:VCARD
VERSION:4.0
FN:Solar Born
BDAY:2023-06-22
END:VCARD
BEGIN:VCARD
VERSION:4.0
N:Doe;Jane;;;
BDAY:--0622
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Bad Lunar
X-LUNAR-BIRTHDAY:13-01
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Date
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Structured
X-LUNAR-BIRTHDAY:--01-15
END:VCARD`

func TestImporter_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(addressBook), 0o600))

	im := &engine.Importer{Lunar: lunar.NewAdapter()}
	drafts, err := im.Read(context.Background(), engine.ImportSource{Path: path})
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	assert.Equal(t, "Grandma", drafts[0].Name)
	assert.Equal(t, 8, drafts[0].LunarMonth)
	assert.Equal(t, 15, drafts[0].LunarDay)

	// 2023-06-22 is lunar 05-05.
	assert.Equal(t, "Solar Born", drafts[1].Name)
	assert.Equal(t, 5, drafts[1].LunarMonth)
	assert.Equal(t, 5, drafts[1].LunarDay)

	assert.Equal(t, "Structured", drafts[2].Name)
	assert.Equal(t, 1, drafts[2].LunarMonth)
	assert.Nil(t, drafts[2].ReminderDays, "imported drafts take the default lead days")
}

func TestImporter_Remote(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/book", "u", "p").
		Return(io.NopCloser(strings.NewReader(addressBook)), nil)

	im := &engine.Importer{Lunar: lunar.NewAdapter(), Fetcher: fetcher}
	drafts, err := im.Read(context.Background(), engine.ImportSource{
		URL: "https://dav.example.com/book", User: "u", Pass: "p",
	})
	require.NoError(t, err)
	assert.Len(t, drafts, 3)
	fetcher.AssertExpectations(t)
}

func TestImporter_Errors(t *testing.T) {
	im := &engine.Importer{Lunar: lunar.NewAdapter()}

	_, err := im.Read(context.Background(), engine.ImportSource{})
	assert.ErrorContains(t, err, config.ErrLocalPathEmpty)

	_, err = im.Read(context.Background(), engine.ImportSource{URL: "https://x"})
	assert.ErrorContains(t, err, config.ErrFetcherMissing)

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dns failure"))
	im.Fetcher = fetcher
	_, err = im.Read(context.Background(), engine.ImportSource{URL: "https://x"})
	assert.ErrorContains(t, err, config.ErrVCardParse)
}

func TestImporter_ReadFailureEndsImport(t *testing.T) {
	errReset := errors.New("connection reset by peer")
	firstCard := "BEGIN:VCARD\nVERSION:3.0\nFN:Grandma\nX-LUNAR-BIRTHDAY:08-15\nEND:VCARD\n"

	tests := []struct {
		name string
		body io.Reader
	}{
		{"FailsImmediately", iotest.ErrReader(errReset)},
		{"FailsMidBody", io.MultiReader(strings.NewReader(firstCard), iotest.ErrReader(errReset))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockFetcher)
			fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(io.NopCloser(tt.body), nil)
			im := &engine.Importer{Lunar: lunar.NewAdapter(), Fetcher: fetcher}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			drafts, err := im.Read(ctx, engine.ImportSource{URL: "https://dav.example.com/contacts"})
			require.Error(t, err)
			assert.ErrorIs(t, err, errReset)
			assert.ErrorContains(t, err, config.ErrVCardRead)
			assert.Nil(t, drafts)
		})
	}
}
