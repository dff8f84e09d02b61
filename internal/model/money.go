package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Cents 以整数分存储金额，避免浮点累加误差。
// 只有在展示/序列化时才格式化成两位小数。
type Cents int64

// ParseCents parses a decimal string like "550.25" into Cents.
// At most two fraction digits are accepted; the value must not be negative.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("amount must not be negative")
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount has more than two fraction digits")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %q", s)
	}
	var f int64
	if frac != "00" {
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount: %q", s)
		}
	}
	return Cents(w*100 + f), nil
}

// String formats the amount with exactly two fraction digits.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	// 兼容 "300.00" 和 300.00 两种形式
	s := strings.Trim(string(data), `"`)
	v, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
