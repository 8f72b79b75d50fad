package model

import "strings"

func (s Side) Opposite() Side {
	if s == SideTop {
		return SideBottom
	}
	return SideTop
}

func MakeParams() Params {
	return Params{W: W, H: H, R: BALL_R, PW: PADDLE_W, PH: PADDLE_H}
}

// SanitizeName trims, truncates to MAX_NAME_LEN runes, strips control
// characters and falls back to DEFAULT_NAME when nothing is left.
func SanitizeName(raw string) string {
	runes := []rune(strings.TrimSpace(raw))
	if len(runes) > MAX_NAME_LEN {
		runes = runes[:MAX_NAME_LEN]
	}
	kept := runes[:0]
	for _, r := range runes {
		if r < 0x20 || r == 0x7F {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return DEFAULT_NAME
	}
	return string(kept)
}
