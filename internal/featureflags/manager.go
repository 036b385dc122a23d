// Package featureflags evaluates per-user rollout flags configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags known to the API. Unknown names in FEATURE_FLAGS are kept and
// reported but nothing reads them.
const (
	// RealtimeNotifications gates the notification websocket.
	RealtimeNotifications = "realtime_notifications"
	// PollPosts gates creation of POLL posts.
	PollPosts = "poll_posts"
)

var defaults = map[string]string{
	RealtimeNotifications: "on",
	PollPosts:             "on",
}

// Manager evaluates flags from a key=value list, e.g.
// "realtime_notifications=on,poll_posts=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses raw on top of the built-in defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return &Manager{flags: out}
}

// Enabled reports whether name is on for userID. Values are on/true/1,
// off/false/0, or N% for a deterministic rollout over user ids. A nil
// Manager enables the built-in defaults only.
func (m *Manager) Enabled(name string, userID uint) bool {
	flags := defaults
	if m != nil {
		flags = m.flags
	}
	value, ok := flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percent(value)
	if !ok || pct <= 0 || userID == 0 {
		return false
	}
	return pct >= 100 || rolloutBucket(name, userID) < pct
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Names returns the configured flag names in order.
func (m *Manager) Names() []string {
	raw := m.Raw()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	names := m.Names()
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func percent(value string) (int, bool) {
	if !strings.HasSuffix(value, "%") {
		return 0, false
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	return pct, err == nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
