// Package dnsflush clears the resolver cache so hosts file changes apply immediately.
package dnsflush

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Method defines the DNS flush method to use.
type Method string

const (
	MethodAuto        Method = "auto"
	MethodDscacheutil Method = "dscacheutil"
	MethodKillall     Method = "killall"
	MethodBoth        Method = "both"
	MethodSystemd     Method = "systemd"
	MethodNscd        Method = "nscd"
	MethodIpconfig    Method = "ipconfig"
	MethodNone        Method = "none"
)

// Methods lists every accepted method, in documentation order.
var Methods = []Method{
	MethodAuto,
	MethodDscacheutil,
	MethodKillall,
	MethodBoth,
	MethodSystemd,
	MethodNscd,
	MethodIpconfig,
	MethodNone,
}

// Valid reports whether m is a known method. The empty method means auto.
func (m Method) Valid() bool {
	if m == "" {
		return true
	}
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Flusher handles DNS cache flushing.
type Flusher struct {
	method   Method
	goos     string
	run      func(name string, args ...string) error
	lookPath func(file string) (string, error)
}

// New creates a flusher for the running OS.
func New(method Method) *Flusher {
	return &Flusher{
		method:   method,
		goos:     runtime.GOOS,
		run:      runCommand,
		lookPath: exec.LookPath,
	}
}

// Flush flushes the DNS cache using the configured method.
func (f *Flusher) Flush() error {
	method := f.method
	if method == MethodNone {
		return nil
	}
	if method == MethodAuto || method == "" {
		method = f.detectMethod()
	}

	switch f.goos {
	case "darwin":
		return f.flushDarwin(method)
	case "linux":
		return f.flushLinux(method)
	case "windows":
		return f.flushWindows()
	default:
		return fmt.Errorf("unsupported operating system: %s", f.goos)
	}
}

func (f *Flusher) detectMethod() Method {
	switch f.goos {
	case "darwin":
		return MethodBoth
	case "linux":
		if _, err := f.lookPath("resolvectl"); err == nil {
			return MethodSystemd
		}
		if _, err := f.lookPath("systemd-resolve"); err == nil {
			return MethodSystemd
		}
		if _, err := f.lookPath("nscd"); err == nil {
			return MethodNscd
		}
		return MethodAuto
	case "windows":
		return MethodIpconfig
	default:
		return MethodAuto
	}
}

func (f *Flusher) flushDarwin(method Method) error {
	var errs []error

	switch method {
	case MethodDscacheutil:
		if err := f.run("dscacheutil", "-flushcache"); err != nil {
			return fmt.Errorf("dscacheutil failed: %w", err)
		}
	case MethodKillall:
		if err := f.run("killall", "-HUP", "mDNSResponder"); err != nil {
			return fmt.Errorf("killall mDNSResponder failed: %w", err)
		}
	case MethodBoth:
		if err := f.run("dscacheutil", "-flushcache"); err != nil {
			errs = append(errs, fmt.Errorf("dscacheutil failed: %w", err))
		}
		if err := f.run("killall", "-HUP", "mDNSResponder"); err != nil {
			errs = append(errs, fmt.Errorf("killall mDNSResponder failed: %w", err))
		}
		if len(errs) == 2 {
			return fmt.Errorf("all DNS flush methods failed: %v, %v", errs[0], errs[1])
		}
	default:
		_ = f.run("dscacheutil", "-flushcache")
		_ = f.run("killall", "-HUP", "mDNSResponder")
	}

	return nil
}

func (f *Flusher) flushLinux(method Method) error {
	switch method {
	case MethodSystemd:
		// resolvectl is the newer name of systemd-resolve
		if err := f.run("resolvectl", "flush-caches"); err != nil {
			if err := f.run("systemd-resolve", "--flush-caches"); err != nil {
				return fmt.Errorf("systemd DNS flush failed: %w", err)
			}
		}
	case MethodNscd:
		if err := f.run("nscd", "-i", "hosts"); err != nil {
			if err := f.run("service", "nscd", "restart"); err != nil {
				return fmt.Errorf("nscd flush failed: %w", err)
			}
		}
	default:
		if err := f.run("resolvectl", "flush-caches"); err == nil {
			return nil
		}
		if err := f.run("systemd-resolve", "--flush-caches"); err == nil {
			return nil
		}
		if err := f.run("nscd", "-i", "hosts"); err == nil {
			return nil
		}
		// Without a caching daemon glibc reads /etc/hosts directly.
	}

	return nil
}

func (f *Flusher) flushWindows() error {
	if err := f.run("ipconfig", "/flushdns"); err != nil {
		return fmt.Errorf("ipconfig /flushdns failed: %w", err)
	}
	return nil
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - Commands are hardcoded DNS flush utilities, not user input
	return cmd.Run()
}
