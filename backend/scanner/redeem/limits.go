package redeemscan

// fdPerBrowser approximates the descriptors one Chrome window with its
// renderer and devtools socket holds open.
const fdPerBrowser = 64

// windowCap returns how many browser windows fit under the soft fd limit, or
// 0 when the limit is unknown.
func windowCap(limit int) int {
	if limit <= 0 {
		return 0
	}
	n := limit / fdPerBrowser
	if n < 1 {
		n = 1
	}
	return n
}
