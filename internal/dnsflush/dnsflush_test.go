package dnsflush

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures commands and fails the ones listed in failing.
type recorder struct {
	calls   []string
	failing map[string]bool
}

func (r *recorder) run(name string, args ...string) error {
	call := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.calls = append(r.calls, call)
	if r.failing[name] {
		return errors.New("exit status 1")
	}
	return nil
}

func newTestFlusher(method Method, goos string, r *recorder, available ...string) *Flusher {
	return &Flusher{
		method: method,
		goos:   goos,
		run:    r.run,
		lookPath: func(file string) (string, error) {
			for _, a := range available {
				if a == file {
					return "/usr/bin/" + file, nil
				}
			}
			return "", errors.New("not found")
		},
	}
}

func TestNew(t *testing.T) {
	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			flusher := New(method)
			require.NotNil(t, flusher)
			assert.Equal(t, method, flusher.method)
		})
	}
}

func TestMethod_Valid(t *testing.T) {
	for _, method := range Methods {
		assert.True(t, method.Valid(), method)
	}
	assert.True(t, Method("").Valid())
	assert.False(t, Method("reboot").Valid())
}

func TestFlusher_DetectMethod(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		available []string
		expected  Method
	}{
		{"darwin", "darwin", nil, MethodBoth},
		{"linux resolvectl", "linux", []string{"resolvectl"}, MethodSystemd},
		{"linux systemd-resolve", "linux", []string{"systemd-resolve"}, MethodSystemd},
		{"linux nscd", "linux", []string{"nscd"}, MethodNscd},
		{"linux bare", "linux", nil, MethodAuto},
		{"windows", "windows", nil, MethodIpconfig},
		{"plan9", "plan9", nil, MethodAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flusher := newTestFlusher(MethodAuto, tt.goos, &recorder{}, tt.available...)
			assert.Equal(t, tt.expected, flusher.detectMethod())
		})
	}
}

func TestFlusher_Flush(t *testing.T) {
	tests := []struct {
		name      string
		method    Method
		goos      string
		available []string
		failing   []string
		calls     []string
		wantErr   bool
	}{
		{
			name:   "none runs nothing",
			method: MethodNone,
			goos:   "linux",
		},
		{
			name:   "darwin auto",
			method: MethodAuto,
			goos:   "darwin",
			calls:  []string{"dscacheutil -flushcache", "killall -HUP mDNSResponder"},
		},
		{
			name:   "darwin dscacheutil",
			method: MethodDscacheutil,
			goos:   "darwin",
			calls:  []string{"dscacheutil -flushcache"},
		},
		{
			name:    "darwin killall fails",
			method:  MethodKillall,
			goos:    "darwin",
			failing: []string{"killall"},
			calls:   []string{"killall -HUP mDNSResponder"},
			wantErr: true,
		},
		{
			name:    "darwin both tolerates one failure",
			method:  MethodBoth,
			goos:    "darwin",
			failing: []string{"dscacheutil"},
			calls:   []string{"dscacheutil -flushcache", "killall -HUP mDNSResponder"},
		},
		{
			name:    "darwin both fails",
			method:  MethodBoth,
			goos:    "darwin",
			failing: []string{"dscacheutil", "killall"},
			calls:   []string{"dscacheutil -flushcache", "killall -HUP mDNSResponder"},
			wantErr: true,
		},
		{
			name:      "linux auto detects systemd",
			method:    MethodAuto,
			goos:      "linux",
			available: []string{"resolvectl"},
			calls:     []string{"resolvectl flush-caches"},
		},
		{
			name:    "linux systemd falls back",
			method:  MethodSystemd,
			goos:    "linux",
			failing: []string{"resolvectl"},
			calls:   []string{"resolvectl flush-caches", "systemd-resolve --flush-caches"},
		},
		{
			name:    "linux nscd fails",
			method:  MethodNscd,
			goos:    "linux",
			failing: []string{"nscd", "service"},
			calls:   []string{"nscd -i hosts", "service nscd restart"},
			wantErr: true,
		},
		{
			name:    "linux without cache daemon",
			method:  MethodAuto,
			goos:    "linux",
			failing: []string{"resolvectl", "systemd-resolve", "nscd"},
			calls:   []string{"resolvectl flush-caches", "systemd-resolve --flush-caches", "nscd -i hosts"},
		},
		{
			name:   "windows",
			method: MethodAuto,
			goos:   "windows",
			calls:  []string{"ipconfig /flushdns"},
		},
		{
			name:    "windows fails",
			method:  MethodIpconfig,
			goos:    "windows",
			failing: []string{"ipconfig"},
			calls:   []string{"ipconfig /flushdns"},
			wantErr: true,
		},
		{
			name:    "unsupported OS",
			method:  MethodAuto,
			goos:    "plan9",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{failing: map[string]bool{}}
			for _, f := range tt.failing {
				r.failing[f] = true
			}
			flusher := newTestFlusher(tt.method, tt.goos, r, tt.available...)

			err := flusher.Flush()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.calls, r.calls)
		})
	}
}

func TestFlusher_Flush_UnsupportedOSMessage(t *testing.T) {
	flusher := newTestFlusher(MethodAuto, "plan9", &recorder{})
	err := flusher.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operating system")
}
