//go:build !unix

package fs

func isCrossDevice(error) bool { return false }
