package launcher

import (
	"context"
	"fmt"
	"os/user"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	accountsDest  = "org.freedesktop.Accounts"
	accountsPath  = "/org/freedesktop/Accounts"
	accountsIface = "org.freedesktop.Accounts"
	accountsUser  = "org.freedesktop.Accounts.User"

	// MinimumVisibleUID hides system accounts from the user list.
	MinimumVisibleUID = 1000
)

// Account is one AccountsService user.
type Account struct {
	UserName      string `json:"user_name" yaml:"user_name"`
	RealName      string `json:"real_name,omitempty" yaml:"real_name,omitempty"`
	UID           uint64 `json:"uid" yaml:"uid"`
	SystemAccount bool   `json:"system_account,omitempty" yaml:"system_account,omitempty"`
	IconFile      string `json:"icon_file,omitempty" yaml:"icon_file,omitempty"`
}

// DisplayName returns the real name, or the user name when it is unset.
func (a Account) DisplayName() string {
	if n := strings.TrimSpace(a.RealName); n != "" {
		return n
	}
	return a.UserName
}

// VisibleAccounts filters out system accounts and sorts the current user
// first, then by display name.
func VisibleAccounts(accounts []Account, current string) []Account {
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.UserName == "" {
			continue
		}
		if a.UserName == current || (a.UID >= MinimumVisibleUID && !a.SystemAccount) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ic, jc := out[i].UserName == current, out[j].UserName == current
		if ic != jc {
			return ic
		}
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	})
	return out
}

// CurrentUsername returns the login name of the user running the panel.
func CurrentUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

// DisplayName returns the current user's full name from AccountsService,
// falling back to the passwd entry and then the login name.
func (l *Launcher) DisplayName(ctx context.Context) string {
	u, err := user.Current()
	if err != nil {
		l.logger.Debug("failed to look up current user", "error", err)
		return ""
	}

	if a, err := l.lookupAccount(ctx, u.Username); err == nil {
		if n := strings.TrimSpace(a.RealName); n != "" {
			return n
		}
	} else {
		l.logger.Debug("AccountsService lookup failed", "user", u.Username, "error", err)
	}

	return fallbackName(u.Name, u.Username)
}

// fallbackName picks the GECOS full name, ignoring trailing comma fields.
func fallbackName(gecos, username string) string {
	name, _, _ := strings.Cut(gecos, ",")
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return username
}

// Accounts lists every cached AccountsService user.
func (l *Launcher) Accounts(ctx context.Context) ([]Account, error) {
	conn, err := l.systemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var paths []dbus.ObjectPath
	if err := conn.Object(accountsDest, accountsPath).
		CallWithContext(ctx, accountsIface+".ListCachedUsers", 0).
		Store(&paths); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	accounts := make([]Account, 0, len(paths))
	for _, p := range paths {
		a, err := readAccount(ctx, conn, p)
		if err != nil {
			l.logger.Debug("failed to read account", "path", p, "error", err)
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (l *Launcher) lookupAccount(ctx context.Context, name string) (Account, error) {
	conn, err := l.systemBus()
	if err != nil {
		return Account{}, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var path dbus.ObjectPath
	if err := conn.Object(accountsDest, accountsPath).
		CallWithContext(ctx, accountsIface+".FindUserByName", 0, name).
		Store(&path); err != nil {
		return Account{}, fmt.Errorf("failed to find user %s: %w", name, err)
	}
	return readAccount(ctx, conn, path)
}

func readAccount(ctx context.Context, conn *dbus.Conn, path dbus.ObjectPath) (Account, error) {
	var props map[string]dbus.Variant
	if err := conn.Object(accountsDest, path).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.GetAll", 0, accountsUser).
		Store(&props); err != nil {
		return Account{}, err
	}
	return accountFromProps(props), nil
}

func accountFromProps(props map[string]dbus.Variant) Account {
	var a Account
	if v, ok := props["UserName"]; ok {
		a.UserName, _ = v.Value().(string)
	}
	if v, ok := props["RealName"]; ok {
		a.RealName, _ = v.Value().(string)
	}
	if v, ok := props["Uid"]; ok {
		a.UID, _ = v.Value().(uint64)
	}
	if v, ok := props["SystemAccount"]; ok {
		a.SystemAccount, _ = v.Value().(bool)
	}
	if v, ok := props["IconFile"]; ok {
		a.IconFile, _ = v.Value().(string)
	}
	return a
}
