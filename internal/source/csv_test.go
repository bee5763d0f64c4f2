package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jayapura = time.FixedZone("WIT", 9*60*60)

func TestParseEvents(t *testing.T) {
	data := "\ufeff Person Name ,Event Time,Device\n" +
		"John Doe,2025-01-06 06:50:12,gate-1\n" +
		"  Jane  ,2025-01-06T07:10:00,gate-1\n" +
		",2025-01-06 07:00:00,gate-2\n" +
		"Budi,not a time,gate-2\n" +
		"Amir,2025-01-06T08:00:00Z,gate-3\n"

	events, dropped, err := ParseEvents(strings.NewReader(data), jayapura)
	require.NoError(t, err)

	assert.Equal(t, 2, dropped)
	require.Len(t, events, 3)
	assert.Equal(t, "John Doe", events[0].EmployeeName)
	assert.Equal(t, time.Date(2025, 1, 6, 6, 50, 12, 0, jayapura), events[0].Timestamp)
	assert.Equal(t, "Jane", events[1].EmployeeName)
	// 带时区的时间会转换到考勤时区
	assert.Equal(t, 17, events[2].Timestamp.Hour())
}

func TestParseEventsMissingColumns(t *testing.T) {
	_, _, err := ParseEvents(strings.NewReader("Name,Time\nJohn,2025-01-06 07:00\n"), jayapura)

	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestParseEventsHeaderOnly(t *testing.T) {
	events, dropped, err := ParseEvents(strings.NewReader("Person Name,Event Time\n"), jayapura)

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Zero(t, dropped)
}

func TestParseStatuses(t *testing.T) {
	data := "Nama Karyawan,Tanggal,Keterangan\n" +
		"Amir,2025-01-06, sick \n" +
		"Amir,2025-01-06,izin\n" +
		"Budi,1/6/2025,Cuti\n" +
		"Citra,2025-01-07,IZIN\n" +
		",2025-01-06,IZIN\n" +
		"Dewi,yesterday,IZIN\n" +
		"Eka,2025-01-06,   \n"

	records, dropped, err := ParseStatuses(strings.NewReader(data), jayapura)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	require.Len(t, records, 4)
	assert.Equal(t, "SICK", records[0].StatusText)

	statuses := StatusMap(records, time.Date(2025, 1, 6, 0, 0, 0, 0, jayapura))
	assert.Equal(t, map[string]string{"Amir": "IZIN", "Budi": "CUTI"}, statuses)
}

func TestParseStatusesMissingColumns(t *testing.T) {
	_, _, err := ParseStatuses(strings.NewReader("Nama Karyawan,Tanggal\nAmir,2025-01-06\n"), jayapura)

	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), ColStatus)
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2025, 1, 6, 7, 5, 0, 0, jayapura)

	for _, value := range []string{
		"2025-01-06 07:05:00",
		"2025-01-06 07:05",
		"2025-01-06T07:05:00",
		"2025/01/06 07:05",
		"1/6/2025 07:05:00",
		"2025-01-06T07:05:00+09:00",
	} {
		got, ok := ParseTimestamp(value, jayapura)
		require.True(t, ok, value)
		assert.True(t, want.Equal(got), value)
	}

	_, ok := ParseTimestamp("  ", jayapura)
	assert.False(t, ok)
}
