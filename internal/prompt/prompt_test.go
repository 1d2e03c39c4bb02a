package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter_ReadHostCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		retries  int
	}{
		{"integer", "3\n", 3, 0},
		{"padded", "  2  \n", 2, 0},
		{"zero", "0\n", 0, 0},
		{"crlf", "4\r\n", 4, 0},
		{"no trailing newline", "5", 5, 0},
		{"retry on text", "abc\n2\n", 2, 1},
		{"retry on float and negative", "1.5\n-1\n\n7\n", 7, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			n, err := p.ReadHostCount()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
			assert.Equal(t, tt.retries, strings.Count(out.String(), "Incorrect input. Enter an integer!"))
			assert.Equal(t, tt.retries+1, strings.Count(out.String(), "Number of pages: "))
		})
	}
}

func TestLinePrompter_ReadHostCount_EOF(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("nope\n"), &out)

	_, err := p.ReadHostCount()
	assert.True(t, errors.Is(err, io.EOF))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestLinePrompter_ReadFailure(t *testing.T) {
	p := NewLinePrompter(failingReader{}, io.Discard)

	_, err := p.ReadHostCount()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
	assert.Contains(t, err.Error(), "device gone")
}

func TestLinePrompter_ReadURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		retries  int
	}{
		{"bare", "example.com\n", "example.com", 0},
		{"https and www", "https://www.example.com\n", "example.com", 0},
		{"http with path", "  http://news.ycombinator.com/item?id=1  \n", "news.ycombinator.com", 0},
		{"upper case", "WWW.Reddit.COM\n", "reddit.com", 0},
		{"retry on empty", "\nexample.org\n", "example.org", 1},
		{"retry on protected", "localhost\nexample.org\n", "example.org", 1},
		{"retry on garbage", "not a host\nhttp://\nexample.org\n", "example.org", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			url, err := p.ReadURL()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, url)
			assert.Equal(t, tt.retries, strings.Count(out.String(), "Incorrect input: "))
		})
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"", "x", "-3", "1e3", "2.0"} {
		_, err := ParseCount(bad)
		assert.True(t, errors.Is(err, ErrInvalidInput), bad)
	}
}

// scriptedSource replays fixed answers.
type scriptedSource struct {
	count int
	urls  []string
	err   error
}

func (s *scriptedSource) ReadHostCount() (int, error) {
	return s.count, nil
}

func (s *scriptedSource) ReadURL() (string, error) {
	if len(s.urls) == 0 {
		return "", s.err
	}
	url := s.urls[0]
	s.urls = s.urls[1:]
	return url, nil
}

func TestCollect(t *testing.T) {
	t.Run("reads count then urls", func(t *testing.T) {
		var out bytes.Buffer
		input := "2\nhttps://www.example.com\nreddit.com\n"
		urls, err := Collect(NewLinePrompter(strings.NewReader(input), &out))
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com", "reddit.com"}, urls)
		assert.Equal(t, 2, strings.Count(out.String(), "Enter URL: "))
	})

	t.Run("zero pages", func(t *testing.T) {
		urls, err := Collect(&scriptedSource{count: 0})
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("source error", func(t *testing.T) {
		_, err := Collect(&scriptedSource{count: 2, urls: []string{"a.com"}, err: io.EOF})
		assert.True(t, errors.Is(err, io.EOF))
	})

	t.Run("huge count", func(t *testing.T) {
		var out bytes.Buffer
		input := "9000000000000000000\nexample.com\n"

		var err error
		assert.NotPanics(t, func() {
			_, err = Collect(NewLinePrompter(strings.NewReader(input), &out))
		})
		assert.True(t, errors.Is(err, io.EOF))
		assert.Equal(t, 2, strings.Count(out.String(), "Enter URL: "))
	})

	t.Run("input ends early", func(t *testing.T) {
		_, err := Collect(NewLinePrompter(strings.NewReader("3\na.com\n"), io.Discard))
		assert.True(t, errors.Is(err, io.EOF))
	})
}
