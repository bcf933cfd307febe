package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id, err := Parse("SIANG")
	require.NoError(t, err)
	require.Equal(t, Siang, id)

	_, err = Parse("MALAM")
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = Parse("pagi")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestNext(t *testing.T) {
	next, ok := Pagi.Next()
	require.True(t, ok)
	require.Equal(t, Siang, next)

	next, ok = Siang.Next()
	require.True(t, ok)
	require.Equal(t, Sore, next)

	_, ok = Sore.Next()
	require.False(t, ok)

	_, ok = ID("X").Next()
	require.False(t, ok)
}

func TestLabels(t *testing.T) {
	require.Equal(t, []string{"08:30", "09:30", "10:30", "11:30"}, Labels(Pagi))
	require.Equal(t, []string{"16:30", "17:30", "18:30", "19:30"}, Labels(Sore))

	labels := Labels(Pagi)
	labels[0] = "00:00"
	require.Equal(t, "08:30", Labels(Pagi)[0])
}

func TestSchemaFingerprint(t *testing.T) {
	pagi := SchemaFor(Pagi)
	require.Equal(t, pagi.Fingerprint(), SchemaFor(Pagi).Fingerprint())
	require.NotEqual(t, pagi.Fingerprint(), SchemaFor(Siang).Fingerprint())

	drifted := Schema{Session: Pagi, Labels: []string{"08:00", "09:30", "10:30", "11:30"}}
	require.NotEqual(t, pagi.Fingerprint(), drifted.Fingerprint())
	require.Len(t, pagi.Fingerprint(), 32)
}

func TestSchemaMatchesLabels(t *testing.T) {
	s := SchemaFor(Siang)
	require.True(t, s.MatchesLabels([]string{"12:30", "13:30", "14:30", "15:30"}))
	require.False(t, s.MatchesLabels([]string{"12:30", "13:30", "14:30"}))
	require.False(t, s.MatchesLabels([]string{"12:30", "13:30", "15:30", "14:30"}))
}
