//go:build windows

package redeemscan

func fdSoftLimit() int { return 0 }
