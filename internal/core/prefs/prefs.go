// Package prefs defines user preferences that persist between runs.
package prefs

import "context"

// Prefs are the persisted preferences.
type Prefs struct {
	Theme   string  `json:"theme,omitempty"`
	Session Session `json:"session,omitzero"`
}

// Session is a stored API credential. It takes precedence over the config
// file and is cleared on logout.
type Session struct {
	Token  string `json:"token,omitempty"`
	Cookie string `json:"cookie,omitempty"`
}

// IsZero reports whether no credential is stored.
func (s Session) IsZero() bool { return s.Token == "" && s.Cookie == "" }

// Store loads and saves preferences.
type Store interface {
	Load(ctx context.Context) (Prefs, error)
	Save(ctx context.Context, p Prefs) error
	Update(ctx context.Context, fn func(*Prefs)) error
}
