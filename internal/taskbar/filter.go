package taskbar

// AcceptsState reports whether a window with the given protocol states may be
// tracked at all. Skip-taskbar windows are always rejected; skip-pager
// windows are rejected unless the settings accept them.
func AcceptsState(states StateFlags, acceptSkipPager bool) bool {
	if states&StateSkipTaskbar != 0 {
		return false
	}
	if states&StateSkipPager != 0 && !acceptSkipPager {
		return false
	}
	return true
}

// AcceptsType reports whether a window with the given protocol types may be
// tracked. Desktops, docks and splash screens are excluded; windows with no
// recognized type default to accepted.
func AcceptsType(types TypeFlags) bool {
	return types&(TypeDesktop|TypeDock|TypeSplash) == 0
}

// IsVisible decides whether a task on the given desktop with the given
// iconified state should currently be shown.
func IsVisible(desktop uint32, iconified bool, s Settings, currentDesktop uint32) bool {
	onDesktop := s.ShowAllDesktops || desktop == AllDesktops || desktop == currentDesktop
	if !onDesktop {
		return false
	}
	if iconified {
		return s.ShowIconified
	}
	return s.ShowMapped
}
