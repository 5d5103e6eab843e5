package request

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yizeng/gab/gin/gorm/pharmacy-ledger/internal/domain"
)

// ParseQuantity reads a quantity sent either as a JSON number or as a numeric
// string. Anything that is not a whole number is an InvalidQuantityError;
// range checks are left to the service.
func ParseQuantity(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, domain.NewInvalidQuantityError(nil)
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, domain.NewInvalidQuantityError(string(raw))
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, domain.NewInvalidQuantityError(text)
	}

	return n, nil
}
