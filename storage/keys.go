package storage

import (
	"fmt"
	"strconv"
	"strings"

	"gatekeeper/domain"
)

// Key namespaces. Every record the system persists lives under one of
// these three prefixes, so the whole state is enumerable per concern.
const (
	PairPrefix    = "pair/"
	MemberPrefix  = "member/"
	PendingPrefix = "pending/"
)

func PairKey(protected domain.ChatID) string {
	return fmt.Sprintf("%s%d", PairPrefix, protected)
}

func MemberKey(gate domain.ChatID, user domain.UserID) string {
	return fmt.Sprintf("%s%d/%d", MemberPrefix, gate, user)
}

// MemberGatePrefix scans all membership records of one gate chat,
// used when pruning a removed gate.
func MemberGatePrefix(gate domain.ChatID) string {
	return fmt.Sprintf("%s%d/", MemberPrefix, gate)
}

func PendingKey(protected domain.ChatID, user domain.UserID) string {
	return fmt.Sprintf("%s%d/%d", PendingPrefix, protected, user)
}

// SplitKey parses the two numeric segments after a namespace prefix.
func SplitKey(key, prefix string) (int64, int64, error) {
	rest := strings.TrimPrefix(key, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed key %q", key)
	}
	first, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed key %q: %v", key, err)
	}
	second, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed key %q: %v", key, err)
	}
	return first, second, nil
}
