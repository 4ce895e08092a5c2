package dto

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequest_DefaultPage(t *testing.T) {
	p := PageRequest{}
	p.DefaultPage()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, Limit: 500}
	p.DefaultPage()
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPageResponse(t *testing.T) {
	assert.Equal(t, 3, NewPageResponse(PageRequest{Page: 1, Limit: 10}, 21).TotalPages)
	assert.Equal(t, 2, NewPageResponse(PageRequest{Page: 1, Limit: 10}, 20).TotalPages)
	assert.Equal(t, 0, NewPageResponse(PageRequest{Page: 1, Limit: 10}, 0).TotalPages)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-10T08:00:00Z", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), got.UTC())

	start, err := ParseDate("2026-03-10", false)
	require.NoError(t, err)
	end, err := ParseDate("2026-03-10", true)
	require.NoError(t, err)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, start.Day(), end.Day())

	_, err = ParseDate("10/03/2026", false)
	assert.Error(t, err)
}

func TestParseDate_FinDeDiaConCambioDeHorario(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })

	// 2026-03-08 dura 23 horas en Nueva York.
	end, err := ParseDate("2026-03-08", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 23, 59, 59, 999999999, loc), end)

	// 2026-11-01 dura 25 horas.
	end, err = ParseDate("2026-11-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 1, 23, 59, 59, 999999999, loc), end)
}

func TestPageRequest_PageInRange(t *testing.T) {
	assert.True(t, PageRequest{Page: MaxPageNumber, Limit: MaxPageLimit}.PageInRange())
	assert.False(t, PageRequest{Page: MaxPageNumber + 1}.PageInRange())

	p := PageRequest{Page: MaxPageNumber, Limit: MaxPageLimit}
	assert.Positive(t, p.Offset())
}
