//go:build !unix && !windows

package platform

func isElevated() bool { return false }

func systemDirectory() string { return "" }

func programData() string { return "" }
