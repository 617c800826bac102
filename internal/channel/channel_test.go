package channel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/crm-tui/internal/db"
)

func TestOpenable(t *testing.T) {
	tests := []struct {
		name  string
		typ   db.ChannelType
		value string
		want  bool
	}{
		{"mobile", db.ChannelMobile, "+47 555", false},
		{"phone with url value", db.ChannelPhone, "https://example.com", false},
		{"email", db.ChannelEmail, "a@b.example", true},
		{"empty email", db.ChannelEmail, "", true},
		{"skype", db.ChannelSkype, "some.id", true},
		{"website http", db.ChannelWebsite, "http://example.com", true},
		{"website https", db.ChannelWebsite, "https://example.com", true},
		{"website bare", db.ChannelWebsite, "example.com", false},
		{"prefix is case sensitive", db.ChannelWebsite, "HTTPS://example.com", false},
		{"other url", db.ChannelOther, "https://linkedin.example/in/x", true},
		{"other text", db.ChannelOther, "LinkedIn: x", false},
		{"leading space", db.ChannelOther, " https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Openable(tt.typ, tt.value))
		})
	}
}

func TestURL(t *testing.T) {
	u, ok := URL(db.ChannelEmail, "a@b.example")
	assert.True(t, ok)
	assert.Equal(t, "mailto:a@b.example", u)

	u, ok = URL(db.ChannelSkype, "some.id")
	assert.True(t, ok)
	assert.Equal(t, "skype:some.id", u)

	u, ok = URL(db.ChannelWebsite, "https://example.com")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", u)

	_, ok = URL(db.ChannelEmail, "")
	assert.False(t, ok)
	_, ok = URL(db.ChannelPhone, "555")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	var opened []string
	opener := func(u string) error {
		opened = append(opened, u)
		return nil
	}

	require.NoError(t, Open(db.Channel{Type: db.ChannelEmail, Value: "a@b.example"}, opener))
	require.NoError(t, Open(db.Channel{Type: db.ChannelPhone, Value: "555"}, opener))
	assert.Equal(t, []string{"mailto:a@b.example"}, opened)

	err := Open(db.Channel{Type: db.ChannelSkype, Value: "x"}, func(string) error { return errors.New("no handler") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skype:x")
}

func TestCopy(t *testing.T) {
	var copied string
	copier := func(s string) error {
		copied = s
		return nil
	}

	require.NoError(t, Copy(db.Channel{Type: db.ChannelPhone, Value: "555"}, copier))
	assert.Equal(t, "555", copied)

	copied = "unchanged"
	require.NoError(t, Copy(db.Channel{}, copier))
	assert.Equal(t, "unchanged", copied)
}
